package console

import (
	"context"
	"fmt"

	"github.com/yourusername/kube-console/internal/diagnostic"
	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/poller"
	"github.com/yourusername/kube-console/internal/prompt"
	"github.com/yourusername/kube-console/internal/query"
	"github.com/yourusername/kube-console/internal/restarts"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
)

func (c *Controller) askTail(ctx context.Context) (int, error) {
	return c.prompt.AskInt(ctx, c.loc.T("prompt.tail_rows"), query.DefaultTail)
}

// frame renders a table, or a notice when the sample is empty
func (c *Controller) frame(t ui.Table) string {
	if t.Len() == 0 {
		return c.out.Styles().Muted.Render(c.loc.T("live.no_rows"))
	}
	return c.out.RenderTable(t)
}

func (c *Controller) watchEvents(ctx context.Context) error {
	c.out.Subtitle(c.loc.T("menu.events"))

	ns, err := c.chooseNamespace(ctx)
	if err != nil {
		return err
	}
	kind, err := c.prompt.Ask(ctx, c.loc.T("prompt.event_kind"))
	if err != nil {
		return err
	}
	tail, err := c.askTail(ctx)
	if err != nil {
		return err
	}

	q := query.EventQuery{Namespace: ns, AbnormalOnly: kind == "2", Tail: tail}
	view := ui.LiveView{Title: c.loc.T("menu.events"), Command: q.Command(), Interval: c.cfg.Interval}
	return c.live(ctx, view, func(ctx context.Context) (string, error) {
		events, err := c.reader.ListEvents(ctx, ns, q.ListOptions().FieldSelector)
		if err != nil {
			return "", err
		}
		return c.frame(eventTable(q.Apply(events), ns == "", c.now())), nil
	})
}

func (c *Controller) watchPods(ctx context.Context, nonRunning bool) error {
	title := c.loc.T("menu.pods")
	if nonRunning {
		title = c.loc.T("menu.non_running_pods")
	}
	c.out.Subtitle(title)

	ns, err := c.chooseNamespace(ctx)
	if err != nil {
		return err
	}
	wide, err := c.prompt.AskYesNo(ctx, c.loc.T("prompt.wide"), false)
	if err != nil {
		return err
	}
	tail, err := c.askTail(ctx)
	if err != nil {
		return err
	}

	q := query.PodQuery{Namespace: ns, Wide: wide, NonRunningOnly: nonRunning, Tail: tail}
	view := ui.LiveView{Title: title, Command: q.Command(), Interval: c.cfg.Interval}
	return c.live(ctx, view, func(ctx context.Context) (string, error) {
		pods, err := c.reader.ListPods(ctx, ns)
		if err != nil {
			return "", err
		}
		return c.frame(podTable(q.Apply(pods), ns == "", wide, c.now())), nil
	})
}

func (c *Controller) watchPodCounts(ctx context.Context) error {
	c.out.Subtitle(c.loc.T("menu.pod_counts"))

	ns, err := c.chooseNamespace(ctx)
	if err != nil {
		return err
	}

	view := ui.LiveView{Title: c.loc.T("podcount.title"), Command: podCountCommand(ns), Interval: c.cfg.Interval}
	list := func(ctx context.Context) ([]corev1.Pod, error) {
		return c.reader.ListPods(ctx, ns)
	}
	return c.live(ctx, view, poller.PodCountSampler(list, c.formatCounts))
}

// podCountCommand is the closest kubectl pipeline to the pod count view
func podCountCommand(namespace string) string {
	scope := "-A"
	if namespace != "" {
		scope = "-n " + namespace
	}
	return "kubectl get pods " + scope + " --no-headers -o custom-columns=PHASE:.status.phase | sort | uniq -c"
}

func (c *Controller) formatCounts(counts model.PodCounts) string {
	s := c.out.Styles()
	return fmt.Sprintf("%s\n\n%s %s\n%s %s\n%s %s",
		counts.String(),
		c.loc.T("podcount.total"), s.Success.Render(fmt.Sprint(counts.Total)),
		c.loc.T("podcount.normal"), s.Success.Render(fmt.Sprint(counts.Normal)),
		c.loc.T("podcount.abnormal"), s.Error.Render(fmt.Sprint(counts.Abnormal)),
	)
}

func (c *Controller) watchNodes(ctx context.Context, unhealthy bool) error {
	title := c.loc.T("menu.nodes")
	if unhealthy {
		title = c.loc.T("menu.unhealthy_nodes")
	}
	c.out.Subtitle(title)

	group, err := c.askNodeGroupFilter(ctx)
	if err != nil {
		return err
	}
	tail, err := c.askTail(ctx)
	if err != nil {
		return err
	}

	q := query.NodeQuery{
		GroupLabel:    c.cfg.NodeGroupLabel,
		Group:         group,
		ZoneLabel:     c.cfg.ZoneLabel,
		UnhealthyOnly: unhealthy,
		Tail:          tail,
	}
	view := ui.LiveView{Title: title, Command: q.Command(), Interval: c.cfg.Interval}
	return c.live(ctx, view, func(ctx context.Context) (string, error) {
		nodes, err := c.reader.ListNodes(ctx, q.ListOptions().LabelSelector)
		if err != nil {
			return "", err
		}
		return c.frame(nodeTable(q.Apply(nodes), c.cfg.ZoneLabel, c.cfg.NodeGroupLabel, c.now())), nil
	})
}

func (c *Controller) watchNodeUsage(ctx context.Context) error {
	c.out.Subtitle(c.loc.T("menu.node_usage"))

	choice, err := c.prompt.AskChoice(ctx, c.loc.T("prompt.sort_key"), []string{"1", "2"}, "")
	if err != nil {
		return err
	}
	top, err := c.prompt.AskInt(ctx, c.loc.T("prompt.top_nodes"), query.DefaultTail)
	if err != nil {
		return err
	}
	group, err := c.askNodeGroupFilter(ctx)
	if err != nil {
		return err
	}

	if c.usage == nil {
		c.out.Error(c.loc.T("usage.unavailable"))
		return nil
	}

	q := query.TopQuery{GroupLabel: c.cfg.NodeGroupLabel, Group: group, SortBy: query.SortKeyChoices[choice], Top: top}
	view := ui.LiveView{Title: c.loc.T("menu.node_usage"), Command: q.Command(), Interval: c.cfg.TopInterval}
	return c.live(ctx, view, func(ctx context.Context) (string, error) {
		nodes, err := c.reader.ListNodes(ctx, q.ListOptions().LabelSelector)
		if err != nil {
			return "", err
		}
		usages, err := c.usage.NodeUsage(ctx, nodes)
		if err != nil {
			return "", err
		}
		return c.frame(usageTable(q.Apply(usages))), nil
	})
}

// restartedContainers lists recently restarted containers and prints the
// previous logs of the one the operator picks
func (c *Controller) restartedContainers(ctx context.Context) error {
	c.out.Subtitle(c.loc.T("menu.restarts"))

	ns, err := c.chooseNamespace(ctx)
	if err != nil {
		return err
	}
	pods, err := c.reader.ListPods(ctx, ns)
	if err != nil {
		return err
	}

	ranked := restarts.Scan(pods)
	if len(ranked) == 0 {
		c.out.Warn(c.loc.T("restarts.none"))
		return nil
	}

	window, err := c.prompt.AskInt(ctx, c.loc.T("prompt.restart_window"), c.cfg.DefaultWindow)
	if err != nil {
		return err
	}
	shown := restarts.Window(ranked, window)

	index, ok, err := c.prompt.Select(ctx, prompt.Selection{
		Title:    c.loc.TF("restarts.title", map[string]interface{}{"Count": len(shown), "Total": len(ranked)}),
		Table:    restartTable(shown),
		Question: c.loc.T("restarts.question"),
		Empty:    c.loc.T("restarts.none"),
		Fallback: c.loc.T("restarts.fallback"),
	})
	if err != nil || !ok {
		return err
	}
	event := shown[index]

	c.out.Info("")
	c.out.Muted(c.loc.T(diagnostic.RestartHint(event)))
	c.out.Muted(diagnostic.RecommendedCommand(event))

	tail, err := c.prompt.AskInt(ctx, c.loc.T("prompt.log_tail"), c.cfg.LogTailLines)
	if err != nil {
		return err
	}

	q := query.LogQuery{Namespace: event.Namespace, Pod: event.Pod, Container: event.Container, Tail: tail}
	c.showCommand(q.Command())
	c.logger.Debug("Fetching previous logs",
		zap.String("namespace", q.Namespace),
		zap.String("pod", q.Pod),
		zap.String("container", q.Container),
		zap.Int64("tail", q.TailLines()))

	if err := c.reader.StreamPreviousLogs(ctx, q.Namespace, q.Pod, q.Container, q.TailLines(), c.out); err != nil {
		return err
	}
	c.out.Info("")
	return nil
}
