package suffix

import (
	"testing"

	"go-ysql/pkg/sqlerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateList(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		typ      Type
		params   Params
		expected []string
	}{
		{
			name:     "sequence",
			count:    3,
			typ:      Sequence,
			params:   Params{Format: "_"},
			expected: []string{"_0", "_1", "_2"},
		},
		{
			name:     "year",
			count:    3,
			typ:      Year,
			params:   Params{Format: "_", StartYear: 2021},
			expected: []string{"_2021", "_2022", "_2023"},
		},
		{
			name:     "year month rollover",
			count:    2,
			typ:      YearMonth,
			params:   Params{Format: "_", StartYear: 2023, StartMonth: 12},
			expected: []string{"_202312", "_202401"},
		},
		{
			name:     "year month padding",
			count:    3,
			typ:      YearMonth,
			params:   Params{Format: "", StartYear: 2020, StartMonth: 8},
			expected: []string{"202008", "202009", "202010"},
		},
		{
			name:     "custom all placeholders",
			count:    2,
			typ:      Custom,
			params:   Params{Format: "_p{index}_{I}"},
			expected: []string{"_p0_0", "_p1_1"},
		},
		{
			name:     "zero count",
			count:    0,
			typ:      Sequence,
			params:   Params{Format: "_"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := GenerateList(tt.count, tt.typ, tt.params)
			require.NoError(t, err)
			assert.Len(t, result, tt.count)
			if tt.expected != nil {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestGenerateListMultiYear(t *testing.T) {
	result, err := GenerateList(26, YearMonth, Params{Format: "_", StartYear: 2020, StartMonth: 1})
	require.NoError(t, err)
	assert.Equal(t, "_202001", result[0])
	assert.Equal(t, "_202012", result[11])
	assert.Equal(t, "_202101", result[12])
	assert.Equal(t, "_202202", result[25])
}

func TestGenerateIsDeterministic(t *testing.T) {
	params := Params{Format: "_", StartYear: 2022, StartMonth: 5}
	first, err := GenerateList(12, YearMonth, params)
	require.NoError(t, err)
	second, err := GenerateList(12, YearMonth, params)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for i, s := range first {
		single, err := Generate(i, YearMonth, params)
		require.NoError(t, err)
		assert.Equal(t, s, single)
	}
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := GenerateList(2, Type("WEEK"), Params{Format: "_"})
	require.Error(t, err)
	assert.True(t, sqlerr.IsConfiguration(err))
}

func TestGenerateListCount(t *testing.T) {
	// 数量为 0 时返回空列表，负数视为配置错误
	result, err := GenerateList(0, Sequence, Params{Format: "_"})
	require.NoError(t, err)
	assert.Empty(t, result)

	_, err = GenerateList(-1, Sequence, Params{Format: "_"})
	require.Error(t, err)
	assert.True(t, sqlerr.IsConfiguration(err))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		typ         Type
		expectError bool
	}{
		{"sequence underscore", "_", Sequence, false},
		{"blank", "", Sequence, true},
		{"whitespace only", "   ", Year, true},
		{"custom with index", "_{index}", Custom, false},
		{"custom with i", "-{i}", Custom, false},
		{"custom uppercase", "{INDEX}", Custom, false},
		{"custom without placeholder", "_shard", Custom, true},
		{"non custom ignores placeholder", "_shard", YearMonth, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.format, tt.typ)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, sqlerr.IsConfiguration(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		expected Type
		ok       bool
	}{
		{"SEQUENCE", Sequence, true},
		{"year", Year, true},
		{"year-month", YearMonth, true},
		{" Year_Month ", YearMonth, true},
		{"custom", Custom, true},
		{"weekly", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := ParseType(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ)
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register(Type("HEX"), func(index int, params Params) string {
		return params.Format + "x"
	})

	s, err := r.Get(Type("HEX"))
	require.NoError(t, err)
	assert.Equal(t, "_x", s(3, Params{Format: "_"}))
}

func TestTypeHelpers(t *testing.T) {
	assert.True(t, Year.UsesStartYear())
	assert.True(t, YearMonth.UsesStartYear())
	assert.False(t, Sequence.UsesStartYear())
	assert.Equal(t, "年月", YearMonth.DisplayName())
	assert.NotEmpty(t, Example(Custom))
}
