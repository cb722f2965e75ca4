package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-wordvec/pkg/pipeline/measure"
	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.AddMetric("parse", 2)

	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)
	mt.AddTransportDuration("read", 4*time.Millisecond)
	mt.AddTransportDuration("read", 8*time.Millisecond)

	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, 20*time.Millisecond, mt.AVGDuration())
	// averages are stable across calls
	assert.Equal(t, map[string]time.Duration{"read": 3 * time.Millisecond}, mt.AVGTransportDuration())
	assert.Equal(t, map[string]time.Duration{"read": 3 * time.Millisecond}, mt.AVGTransportDuration())
}

func TestGetMetricUnknown(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.GetMetric("unknown")
	require.NotNil(t, mt)

	mt.AddDuration(time.Second)
	assert.Empty(t, m.AllMetrics())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)

	root := &model.StepInfo{Name: "root", Concurrent: 1}
	step := &model.StepInfo{Name: "step", Concurrent: 1}
	sink := &model.StepInfo{Name: "sink", Concurrent: 1}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStep(model.StartStep.Details, root))
	require.NoError(t, opt.PrepareStep(root, step))
	require.NoError(t, opt.PrepareSink(step, sink))
	require.NoError(t, opt.OnStepOutput(root, step, time.Millisecond, 2*time.Millisecond))
	require.NoError(t, opt.OnSinkOutput(step, sink, time.Millisecond, time.Millisecond))
	require.NoError(t, opt.AfterSink(sink, time.Second))
	require.NoError(t, opt.Finish())

	assert.Len(t, m.AllMetrics(), 5)
	assert.Equal(t, 2*time.Millisecond, m.GetMetric("step").AVGDuration())
	assert.Equal(t, time.Second, m.GetMetric("sink").GetTotalDuration())
	assert.Equal(t, time.Second, m.GetMetric("end").GetTotalDuration())
}
