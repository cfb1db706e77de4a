package monitoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType int

const (
	// Counter 计数器
	Counter MetricType = iota
	// Gauge 仪表盘
	Gauge
	// Histogram 直方图
	Histogram
)

// String 类型名称
func (t MetricType) String() string {
	switch t {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	case Histogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Metric 指标接口
type Metric interface {
	// GetName 获取指标名称
	GetName() string
	// GetType 获取指标类型
	GetType() MetricType
	// GetValue 获取指标值
	GetValue() interface{}
	// GetLabels 获取标签
	GetLabels() map[string]string
}

// CounterMetric 计数器指标
type CounterMetric struct {
	name   string
	value  int64
	labels map[string]string
	mu     sync.RWMutex
}

// NewCounterMetric 创建计数器指标
func NewCounterMetric(name string, labels map[string]string) *CounterMetric {
	return &CounterMetric{
		name:   name,
		labels: labels,
	}
}

// GetName 获取指标名称
func (c *CounterMetric) GetName() string {
	return c.name
}

// GetType 获取指标类型
func (c *CounterMetric) GetType() MetricType {
	return Counter
}

// GetValue 获取指标值
func (c *CounterMetric) GetValue() interface{} {
	return c.Value()
}

// Value 当前计数
func (c *CounterMetric) Value() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// GetLabels 获取标签
func (c *CounterMetric) GetLabels() map[string]string {
	return c.labels
}

// Inc 增加计数
func (c *CounterMetric) Inc() {
	c.Add(1)
}

// Add 增加指定值
func (c *CounterMetric) Add(value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += value
}

// GaugeMetric 仪表盘指标
type GaugeMetric struct {
	name   string
	value  float64
	labels map[string]string
	mu     sync.RWMutex
}

// NewGaugeMetric 创建仪表盘指标
func NewGaugeMetric(name string, labels map[string]string) *GaugeMetric {
	return &GaugeMetric{
		name:   name,
		labels: labels,
	}
}

// GetName 获取指标名称
func (g *GaugeMetric) GetName() string {
	return g.name
}

// GetType 获取指标类型
func (g *GaugeMetric) GetType() MetricType {
	return Gauge
}

// GetValue 获取指标值
func (g *GaugeMetric) GetValue() interface{} {
	return g.Value()
}

// Value 当前值
func (g *GaugeMetric) Value() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// GetLabels 获取标签
func (g *GaugeMetric) GetLabels() map[string]string {
	return g.labels
}

// Set 设置值
func (g *GaugeMetric) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
}

// Inc 增加 1
func (g *GaugeMetric) Inc() {
	g.Add(1)
}

// Dec 减少 1
func (g *GaugeMetric) Dec() {
	g.Add(-1)
}

// Add 增加指定值
func (g *GaugeMetric) Add(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += value
}

// HistogramSnapshot 直方图快照
type HistogramSnapshot struct {
	Buckets []float64
	Counts  []int64 // 最后一个元素为 +Inf 桶
	Sum     float64
	Count   int64
}

// Mean 平均值，无观测时为 0
func (s HistogramSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// HistogramMetric 直方图指标
type HistogramMetric struct {
	name    string
	buckets []float64
	counts  []int64
	sum     float64
	count   int64
	labels  map[string]string
	mu      sync.RWMutex
}

// NewHistogramMetric 创建直方图指标
func NewHistogramMetric(name string, buckets []float64, labels map[string]string) *HistogramMetric {
	return &HistogramMetric{
		name:    name,
		buckets: buckets,
		counts:  make([]int64, len(buckets)+1),
		labels:  labels,
	}
}

// GetName 获取指标名称
func (h *HistogramMetric) GetName() string {
	return h.name
}

// GetType 获取指标类型
func (h *HistogramMetric) GetType() MetricType {
	return Histogram
}

// GetValue 获取指标值
func (h *HistogramMetric) GetValue() interface{} {
	return h.Snapshot()
}

// Snapshot 复制当前状态
func (h *HistogramMetric) Snapshot() HistogramSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HistogramSnapshot{
		Buckets: append([]float64(nil), h.buckets...),
		Counts:  append([]int64(nil), h.counts...),
		Sum:     h.sum,
		Count:   h.count,
	}
}

// GetLabels 获取标签
func (h *HistogramMetric) GetLabels() map[string]string {
	return h.labels
}

// Observe 观察值，只计入第一个上界不小于该值的桶
func (h *HistogramMetric) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++

	for i, bucket := range h.buckets {
		if value <= bucket {
			h.counts[i]++
			return
		}
	}
	h.counts[len(h.buckets)]++
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	metrics map[string]Metric
	mu      sync.RWMutex
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]Metric),
	}
}

// RegisterMetric 注册指标，同名同标签的指标会被替换
func (mc *MetricsCollector) RegisterMetric(metric Metric) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics[metricKey(metric.GetName(), metric.GetLabels())] = metric
}

// GetMetric 获取指标
func (mc *MetricsCollector) GetMetric(name string, labels map[string]string) Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return mc.metrics[metricKey(name, labels)]
}

// GetOrRegister 获取指标，不存在时用 create 创建并注册
func (mc *MetricsCollector) GetOrRegister(name string, labels map[string]string, create func() Metric) Metric {
	key := metricKey(name, labels)

	mc.mu.RLock()
	m, ok := mc.metrics[key]
	mc.mu.RUnlock()
	if ok {
		return m
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if m, ok := mc.metrics[key]; ok {
		return m
	}
	m = create()
	mc.metrics[key] = m
	return m
}

// GetAllMetrics 获取所有指标
func (mc *MetricsCollector) GetAllMetrics() map[string]Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]Metric, len(mc.metrics))
	for k, v := range mc.metrics {
		result[k] = v
	}
	return result
}

// metricKey 生成指标键，标签按键名排序
func metricKey(name string, labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString("{")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(labels[k])
		sb.WriteString("}")
	}
	return sb.String()
}

// 指标名称
const (
	GenerationsTotalName   = "ysql_generations_total"
	GenerationErrorsName   = "ysql_generation_errors_total"
	GenerationDurationName = "ysql_generation_duration_seconds"
	GenerationOutputName   = "ysql_generation_output_bytes"
	InFlightName           = "ysql_generations_in_flight"
)

// DurationBuckets 生成耗时的桶边界（秒）
var DurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}

// OutputBuckets 输出大小的桶边界（字节）
var OutputBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144}

// GenerationMetrics 各类生成操作的指标
type GenerationMetrics struct {
	collector *MetricsCollector
	InFlight  *GaugeMetric
}

// NewGenerationMetrics 创建生成指标
func NewGenerationMetrics() *GenerationMetrics {
	collector := NewMetricsCollector()
	inFlight := NewGaugeMetric(InFlightName, map[string]string{})
	collector.RegisterMetric(inFlight)

	return &GenerationMetrics{
		collector: collector,
		InFlight:  inFlight,
	}
}

// Begin 标记一次生成开始，返回的函数在结束时调用
func (gm *GenerationMetrics) Begin(operation string) func(outputBytes int, errKind string) {
	start := time.Now()
	gm.InFlight.Inc()
	return func(outputBytes int, errKind string) {
		gm.InFlight.Dec()
		gm.Record(operation, time.Since(start), outputBytes, errKind)
	}
}

// Record 记录一次生成；errKind 为空表示成功
func (gm *GenerationMetrics) Record(operation string, duration time.Duration, outputBytes int, errKind string) {
	gm.Total(operation).Inc()
	gm.Duration(operation).Observe(duration.Seconds())

	if errKind != "" {
		gm.Errors(operation, errKind).Inc()
		return
	}
	gm.Output(operation).Observe(float64(outputBytes))
}

// Total 操作的生成次数
func (gm *GenerationMetrics) Total(operation string) *CounterMetric {
	labels := map[string]string{"operation": operation}
	return gm.collector.GetOrRegister(GenerationsTotalName, labels, func() Metric {
		return NewCounterMetric(GenerationsTotalName, labels)
	}).(*CounterMetric)
}

// Errors 操作按错误类别的失败次数
func (gm *GenerationMetrics) Errors(operation, kind string) *CounterMetric {
	labels := map[string]string{"operation": operation, "kind": kind}
	return gm.collector.GetOrRegister(GenerationErrorsName, labels, func() Metric {
		return NewCounterMetric(GenerationErrorsName, labels)
	}).(*CounterMetric)
}

// Duration 操作耗时分布
func (gm *GenerationMetrics) Duration(operation string) *HistogramMetric {
	labels := map[string]string{"operation": operation}
	return gm.collector.GetOrRegister(GenerationDurationName, labels, func() Metric {
		return NewHistogramMetric(GenerationDurationName, DurationBuckets, labels)
	}).(*HistogramMetric)
}

// Output 成功生成的输出大小分布
func (gm *GenerationMetrics) Output(operation string) *HistogramMetric {
	labels := map[string]string{"operation": operation}
	return gm.collector.GetOrRegister(GenerationOutputName, labels, func() Metric {
		return NewHistogramMetric(GenerationOutputName, OutputBuckets, labels)
	}).(*HistogramMetric)
}

// GetCollector 获取指标收集器
func (gm *GenerationMetrics) GetCollector() *MetricsCollector {
	return gm.collector
}

// Summary 按指标键排序的文本摘要
func (gm *GenerationMetrics) Summary() string {
	all := gm.collector.GetAllMetrics()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		switch m := all[k].(type) {
		case *CounterMetric:
			sb.WriteString(fmt.Sprintf("%s %d\n", k, m.Value()))
		case *GaugeMetric:
			sb.WriteString(fmt.Sprintf("%s %g\n", k, m.Value()))
		case *HistogramMetric:
			s := m.Snapshot()
			sb.WriteString(fmt.Sprintf("%s count=%d sum=%g mean=%g\n", k, s.Count, s.Sum, s.Mean()))
		}
	}
	return sb.String()
}
