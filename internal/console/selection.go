package console

import (
	"context"

	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/prompt"
	"github.com/yourusername/kube-console/internal/ui"
)

// chooseNamespace returns the selected namespace, or "" for all of them.
// A failed namespace list is reported and treated as no selection.
func (c *Controller) chooseNamespace(ctx context.Context) (string, error) {
	namespaces, err := c.reader.ListNamespaces(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.report(err)
		c.out.Warn(c.loc.T("namespace.fallback"))
		return "", nil
	}

	rows := make([][]string, 0, len(namespaces))
	for _, ns := range namespaces {
		rows = append(rows, []string{ns.Name})
	}

	index, ok, err := c.prompt.Select(ctx, prompt.Selection{
		Title:    c.loc.T("namespace.title"),
		Table:    ui.IndexedTable([]string{"Namespace"}, rows),
		Question: c.loc.T("namespace.question"),
		Empty:    c.loc.T("namespace.empty"),
		Fallback: c.loc.T("namespace.fallback"),
	})
	if err != nil || !ok {
		return "", err
	}
	return namespaces[index].Name, nil
}

// chooseNodeGroup returns the selected value of the node group label, or
// "" for no filter
func (c *Controller) chooseNodeGroup(ctx context.Context) (string, error) {
	nodes, err := c.reader.ListNodes(ctx, "")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.report(err)
		c.out.Warn(c.loc.T("nodegroup.fallback"))
		return "", nil
	}

	groups := datasource.NodeGroups(nodes, c.cfg.NodeGroupLabel)
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g})
	}

	index, ok, err := c.prompt.Select(ctx, prompt.Selection{
		Title:    c.loc.T("nodegroup.title"),
		Table:    ui.IndexedTable([]string{"Node Group"}, rows),
		Question: c.loc.T("nodegroup.question"),
		Empty:    c.loc.T("nodegroup.empty"),
		Fallback: c.loc.T("nodegroup.fallback"),
	})
	if err != nil || !ok {
		return "", err
	}
	return groups[index], nil
}

// askNodeGroupFilter asks whether to filter by node group and, if so,
// which one
func (c *Controller) askNodeGroupFilter(ctx context.Context) (string, error) {
	filter, err := c.prompt.AskYesNo(ctx, c.loc.T("nodegroup.filter"), false)
	if err != nil || !filter {
		return "", err
	}
	return c.chooseNodeGroup(ctx)
}
