package vm

import (
	"bytes"
	"context"
	"testing"

	"github.com/jsjolen/remacs/object"
	"github.com/jsjolen/remacs/op"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	config  ObserverConfig
	steps   []StepEvent
	calls   []CallEvent
	returns []ReturnEvent
	haltAt  int
}

func (r *recordingObserver) Config() ObserverConfig {
	return r.config
}

func (r *recordingObserver) OnStep(e StepEvent) bool {
	r.steps = append(r.steps, e)
	return r.haltAt == 0 || len(r.steps) < r.haltAt
}

func (r *recordingObserver) OnCall(e CallEvent) bool {
	r.calls = append(r.calls, e)
	return true
}

func (r *recordingObserver) OnReturn(e ReturnEvent) bool {
	r.returns = append(r.returns, e)
	return true
}

func TestObserverEvents(t *testing.T) {
	obs := &recordingObserver{config: NewObserverConfig(StepAll)}
	s := New(WithObserver(obs))
	bc := code(constant(0), constant(1), constant(2), op.Call+2, op.Return)
	result, err := execute(t, s, bc, consts(object.Intern("+"), object.Int(1), object.Int(2)), 3)
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Int(3)), result)

	require.Len(t, obs.steps, 5)
	require.Equal(t, "constant", obs.steps[0].OpcodeName)
	require.Equal(t, op.Call, obs.steps[3].Opcode)
	require.Equal(t, 2, obs.steps[3].Operand)
	require.Equal(t, 3, obs.steps[3].StackDepth)
	require.Equal(t, 3, obs.steps[3].Offset)

	// The top-level procedure and the + primitive.
	require.Len(t, obs.calls, 2)
	require.Equal(t, "+", obs.calls[1].FunctionName)
	require.Equal(t, 2, obs.calls[1].ArgCount)
	require.Equal(t, 2, obs.calls[1].EvalDepth)
	require.Len(t, obs.returns, 2)
	require.False(t, obs.returns[0].Exited)
}

func TestObserverSampled(t *testing.T) {
	cfg := NewObserverConfig(StepSampled)
	cfg.SampleInterval = 2
	obs := &recordingObserver{config: cfg}
	s := New(WithObserver(obs))
	_, err := execute(t, s, code(constant(0), op.Dup, op.Dup, op.Discard, op.Return), ints(1), 3)
	require.NoError(t, err)
	require.Len(t, obs.steps, 2)
}

func TestObserverHalt(t *testing.T) {
	obs := &recordingObserver{config: NewObserverConfig(StepAll), haltAt: 2}
	s := New(WithObserver(obs))
	_, err := execute(t, s, code(constant(0), op.Dup, op.Return), ints(1), 2)
	require.ErrorIs(t, err, ErrHalted)
}

func TestObserverHaltNotCatchable(t *testing.T) {
	obs := &recordingObserver{config: NewObserverConfig(StepAll), haltAt: 3}
	bc := code(constant(0), op.Pushconditioncase, 5, 0, op.Dup, op.Return)
	_, err := execute(t, New(WithObserver(obs)), bc, consts(object.T), 2)
	require.ErrorIs(t, err, ErrHalted)
}

func TestTraceObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	s := New(WithObserver(NewTraceObserver(logger, StepAll)))
	_, err := s.Funcall(context.Background(), object.Intern("list"), ints(1))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"fn":"list"`)
	require.Contains(t, buf.String(), `"message":"call"`)
	require.Contains(t, buf.String(), `"message":"return"`)
}

func TestNoOpObserver(t *testing.T) {
	s := New(WithObserver(NoOpObserver{}))
	result, err := execute(t, s, code(constant(0), op.Return), ints(4), 1)
	require.NoError(t, err)
	require.Equal(t, object.Object(object.Int(4)), result)
}

func TestLoggerRecordsFatalErrors(t *testing.T) {
	var buf bytes.Buffer
	s := New(WithLogger(zerolog.New(&buf)))
	_, err := execute(t, s, code(op.Return), nil, 1)
	require.Error(t, err)
	require.Contains(t, buf.String(), `"kind":"stack error"`)
	require.Contains(t, buf.String(), s.ID().String())
}
