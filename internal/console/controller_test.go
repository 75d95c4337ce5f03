package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/i18n"
	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/prompt"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type logCall struct {
	namespace, pod, container string
	tail                      int64
}

type fakeReader struct {
	namespaces []model.Namespace
	nodes      []corev1.Node
	pods       []corev1.Pod
	events     []corev1.Event
	podsErr    error

	eventSelectors []string
	nodeSelectors  []string
	logs           []logCall
}

func (f *fakeReader) ListNamespaces(context.Context) ([]model.Namespace, error) {
	return f.namespaces, nil
}

func (f *fakeReader) ListNodes(_ context.Context, selector string) ([]corev1.Node, error) {
	f.nodeSelectors = append(f.nodeSelectors, selector)
	sel, err := labels.Parse(selector)
	if err != nil {
		return nil, err
	}
	var out []corev1.Node
	for _, n := range f.nodes {
		if sel.Matches(labels.Set(n.Labels)) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeReader) ListPods(_ context.Context, namespace string) ([]corev1.Pod, error) {
	if f.podsErr != nil {
		return nil, f.podsErr
	}
	var out []corev1.Pod
	for _, p := range f.pods {
		if namespace == "" || p.Namespace == namespace {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeReader) ListEvents(_ context.Context, _ string, fieldSelector string) ([]corev1.Event, error) {
	f.eventSelectors = append(f.eventSelectors, fieldSelector)
	return f.events, nil
}

func (f *fakeReader) StreamPreviousLogs(_ context.Context, namespace, pod, container string, tailLines int64, w io.Writer) error {
	f.logs = append(f.logs, logCall{namespace, pod, container, tailLines})
	_, err := fmt.Fprintln(w, "panic: previous instance crashed")
	return err
}

type fakeUsage struct {
	usages []model.NodeUsage
}

func (f *fakeUsage) NodeUsage(context.Context, []corev1.Node) ([]model.NodeUsage, error) {
	return f.usages, nil
}

func (f *fakeUsage) Name() string { return "fake" }

// liveRecorder stands in for the terminal live view: it records frames and
// closes the view after the first one
type liveRecorder struct {
	frames  []string
	errs    []error
	close   context.CancelFunc
	onFrame func()
}

func (r *liveRecorder) Frame(content string) {
	r.frames = append(r.frames, content)
	if r.onFrame != nil {
		r.onFrame()
	}
	r.close()
}

func (r *liveRecorder) Error(err error) {
	r.errs = append(r.errs, err)
	r.close()
}

func (r *liveRecorder) Close() error {
	r.close()
	return nil
}

type testOutput struct {
	*ui.Console
	views   []ui.LiveView
	lives   []*liveRecorder
	onFrame func()
}

func (o *testOutput) OpenLive(ctx context.Context, view ui.LiveView) (ui.LiveRenderer, context.Context) {
	liveCtx, cancel := context.WithCancel(ctx)
	rec := &liveRecorder{close: cancel, onFrame: o.onFrame}
	o.views = append(o.views, view)
	o.lives = append(o.lives, rec)
	return rec, liveCtx
}

type harness struct {
	ctrl     *Controller
	reader   *fakeReader
	out      *testOutput
	buf      *bytes.Buffer
	cleanups int
	copied   []string
}

func newHarness(input string, reader *fakeReader, usage datasource.UsageSource, cfg Config) *harness {
	h := &harness{reader: reader, buf: &bytes.Buffer{}}
	h.out = &testOutput{Console: ui.NewConsole(h.buf, true)}
	h.ctrl = New(reader, usage, h.out, prompt.NewLineReader(strings.NewReader(input)),
		i18n.NewLocalizer("en"), zap.NewNop(), cfg,
		WithCleanup(func() { h.cleanups++ }),
		WithClipboard(func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		}),
		WithClock(func() time.Time { return now }),
	)
	return h
}

func restartedPod(namespace, name, container string, finished time.Time) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:         container,
				RestartCount: 3,
				LastTerminationState: corev1.ContainerState{
					Terminated: &corev1.ContainerStateTerminated{
						Reason:     "Error",
						ExitCode:   1,
						FinishedAt: metav1.NewTime(finished),
					},
				},
			}},
		},
	}
}

func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"1":    ActionEvents,
		"2":    ActionRestarts,
		" 5 ":  ActionPodCounts,
		"8":    ActionNodeUsage,
		"q":    ActionQuit,
		"Q":    ActionQuit,
		"9":    ActionInvalid,
		"":     ActionInvalid,
		"quit": ActionInvalid,
	}
	for token, want := range tests {
		assert.Equal(t, want, ParseAction(token), "token %q", token)
	}
}

func TestRunQuit(t *testing.T) {
	h := newHarness("q\n", &fakeReader{}, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, Termination{Reason: ReasonQuit, Code: 0}, term)
	assert.Equal(t, 1, h.cleanups)
	assert.Contains(t, h.buf.String(), "Kubernetes Monitoring Tool")
	assert.Contains(t, h.buf.String(), "Exiting normally.")
}

func TestRunEndOfInput(t *testing.T) {
	h := newHarness("", &fakeReader{}, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, Termination{Reason: ReasonEOF, Code: 0}, term)
	assert.Equal(t, 1, h.cleanups)
	assert.Contains(t, h.buf.String(), "Input ended (EOF)")
}

func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHarness("1\n", &fakeReader{}, nil, Config{})

	term := h.ctrl.Run(ctx)

	assert.Equal(t, Termination{Reason: ReasonInterrupt, Code: 130}, term)
	assert.Equal(t, 1, h.cleanups)
	assert.Contains(t, h.buf.String(), "Interrupted (Ctrl+C)")
}

func TestRunEndOfInputInsideAction(t *testing.T) {
	// input ends while the namespace question is open
	reader := &fakeReader{namespaces: []model.Namespace{{Name: "shop"}}}
	h := newHarness("3\n", reader, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonEOF, term.Reason)
	assert.Equal(t, 1, h.cleanups)
}

func TestRunInvalidTokenLoops(t *testing.T) {
	h := newHarness("9\nhello\nQ\n", &fakeReader{}, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonQuit, term.Reason)
	assert.Equal(t, 2, strings.Count(h.buf.String(), "Invalid choice."))
}

func TestRestartedContainerLogsDefaultTail(t *testing.T) {
	reader := &fakeReader{
		namespaces: []model.Namespace{{Name: "default"}, {Name: "shop"}},
		pods: []corev1.Pod{
			restartedPod("shop", "api-0", "api", now.Add(-10*time.Second)),
			restartedPod("shop", "worker-0", "worker", now.Add(-30*time.Second)),
		},
	}
	// all namespaces, default window, first entry, empty tail, quit
	h := newHarness("2\n\n\n1\n\nq\n", reader, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonQuit, term.Reason)
	require.Len(t, reader.logs, 1)
	assert.Equal(t, logCall{"shop", "api-0", "api", 50}, reader.logs[0])

	out := h.buf.String()
	assert.Contains(t, out, "kubectl logs -n shop -p api-0 -c api --tail=50")
	assert.Contains(t, out, "panic: previous instance crashed")
	assert.Contains(t, out, "The application exited with an error.")
	assert.Less(t, strings.Index(out, "api-0"), strings.Index(out, "worker-0"))
}

func TestRestartedContainerOutOfRangeReturnsToMenu(t *testing.T) {
	reader := &fakeReader{
		namespaces: []model.Namespace{{Name: "shop"}},
		pods:       []corev1.Pod{restartedPod("shop", "api-0", "api", now)},
	}
	h := newHarness("2\n\n\n7\nq\n", reader, nil, Config{})

	h.ctrl.Run(context.Background())

	assert.Empty(t, reader.logs)
	assert.Contains(t, h.buf.String(), "Invalid number. Back to the menu.")
}

func TestNoRestartedContainers(t *testing.T) {
	reader := &fakeReader{namespaces: []model.Namespace{{Name: "shop"}}}
	h := newHarness("2\n1\nq\n", reader, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonQuit, term.Reason)
	assert.Contains(t, h.buf.String(), "No recently restarted containers.")
}

func TestActionErrorKeepsMenuRunning(t *testing.T) {
	reader := &fakeReader{
		podsErr: &datasource.APIError{Type: datasource.ErrForbidden, Op: "list pods", Message: "access denied"},
	}
	h := newHarness("2\nq\n", reader, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonQuit, term.Reason)
	assert.Contains(t, h.buf.String(), "Cluster request failed (forbidden): list pods: access denied")
}

func TestPodCountView(t *testing.T) {
	var pods []corev1.Pod
	phases := []corev1.PodPhase{
		corev1.PodRunning, corev1.PodRunning, corev1.PodRunning, corev1.PodRunning, corev1.PodRunning,
		corev1.PodSucceeded, corev1.PodSucceeded,
		corev1.PodPending, corev1.PodFailed, corev1.PodUnknown,
	}
	for i, phase := range phases {
		pods = append(pods, corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: fmt.Sprintf("p%d", i), Namespace: "shop"},
			Status:     corev1.PodStatus{Phase: phase},
		})
	}
	reader := &fakeReader{namespaces: []model.Namespace{{Name: "shop"}}, pods: pods}
	h := newHarness("5\n\nq\n", reader, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonQuit, term.Reason)
	require.Len(t, h.out.lives, 1)
	require.NotEmpty(t, h.out.lives[0].frames)
	assert.Contains(t, h.out.lives[0].frames[0], "Total=10, Normal=7, Abnormal=3")
	assert.Equal(t, 2*time.Second, h.out.views[0].Interval)
	assert.Contains(t, h.buf.String(), "Back to the menu...")
}

func TestAbnormalEventView(t *testing.T) {
	reader := &fakeReader{
		namespaces: []model.Namespace{{Name: "shop"}},
		events: []corev1.Event{{
			ObjectMeta:     metav1.ObjectMeta{Name: "e1", Namespace: "shop"},
			InvolvedObject: corev1.ObjectReference{Kind: "Pod", Name: "api-0"},
			Type:           "Warning",
			Reason:         "BackOff",
			Message:        "Back-off restarting failed container",
			LastTimestamp:  metav1.NewTime(now.Add(-time.Minute)),
		}},
	}
	h := newHarness("1\n1\n2\n5\nq\n", reader, nil, Config{CopyCommands: true})

	h.ctrl.Run(context.Background())

	assert.Equal(t, []string{"type!=Normal"}, reader.eventSelectors)
	require.Len(t, h.out.views, 1)
	want := "kubectl get events -n shop --field-selector type!=Normal --sort-by='.metadata.managedFields[].time' | tail -n 5"
	assert.Equal(t, want, h.out.views[0].Command)
	assert.Equal(t, []string{want}, h.copied)

	frame := h.out.lives[0].frames[0]
	assert.Contains(t, frame, "BackOff")
	assert.Contains(t, frame, "pod/api-0")
	assert.Contains(t, frame, "1m")
	assert.NotContains(t, frame, "NAMESPACE")
}

func TestNodeViewFiltersByGroup(t *testing.T) {
	reader := &fakeReader{
		nodes: []corev1.Node{
			{ObjectMeta: metav1.ObjectMeta{Name: "web-1", Labels: map[string]string{model.DefaultNodeGroupLabel: "web"}}},
			{ObjectMeta: metav1.ObjectMeta{Name: "batch-1", Labels: map[string]string{model.DefaultNodeGroupLabel: "batch"}}},
		},
	}
	// filter yes, second group (web), default tail
	h := newHarness("6\ny\n2\n\nq\n", reader, nil, Config{})

	h.ctrl.Run(context.Background())

	assert.Equal(t, []string{"", "node.kubernetes.io/app=web"}, reader.nodeSelectors)
	frame := h.out.lives[0].frames[0]
	assert.Contains(t, frame, "web-1")
	assert.NotContains(t, frame, "batch-1")
	assert.Contains(t, frame, "ZONE")
	assert.Contains(t, frame, "APP")
}

func TestNodeUsageView(t *testing.T) {
	reader := &fakeReader{nodes: []corev1.Node{{ObjectMeta: metav1.ObjectMeta{Name: "a"}}}}
	usage := &fakeUsage{usages: []model.NodeUsage{
		{Name: "cool", CPUMillicores: 100, CPUAllocatable: 1000, MemoryBytes: 900, MemoryAllocatable: 1000},
		{Name: "hot", CPUMillicores: 900, CPUAllocatable: 1000, MemoryBytes: 100, MemoryAllocatable: 1000},
	}}
	// invalid sort key is asked again, then memory, top 1, no filter
	h := newHarness("8\n3\n2\n1\nno\nq\n", reader, usage, Config{})

	h.ctrl.Run(context.Background())

	require.Len(t, h.out.views, 1)
	assert.Equal(t, time.Second, h.out.views[0].Interval)
	assert.Contains(t, h.out.views[0].Command, "sort -k5 -nr")
	frame := h.out.lives[0].frames[0]
	assert.Contains(t, frame, "cool")
	assert.NotContains(t, frame, "hot")
	assert.Contains(t, h.buf.String(), "Invalid input. Please try again.")
}

func TestNodeUsageUnavailable(t *testing.T) {
	h := newHarness("8\n1\n\nno\nq\n", &fakeReader{}, nil, Config{})

	term := h.ctrl.Run(context.Background())

	assert.Equal(t, ReasonQuit, term.Reason)
	assert.Empty(t, h.out.views)
	assert.Contains(t, h.buf.String(), "Node usage is unavailable")
}

func TestInterruptDuringLiveView(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{namespaces: []model.Namespace{{Name: "shop"}}}
	h := newHarness("5\n\nq\n", reader, nil, Config{})
	h.out.onFrame = cancel

	term := h.ctrl.Run(ctx)

	assert.Equal(t, Termination{Reason: ReasonInterrupt, Code: 130}, term)
	assert.Equal(t, 1, h.cleanups)
	assert.NotContains(t, h.buf.String(), "Back to the menu...")
}
