package console

import "strings"

// Action is one entry of the main menu
type Action int

const (
	ActionInvalid Action = iota
	ActionEvents
	ActionRestarts
	ActionPods
	ActionNonRunningPods
	ActionPodCounts
	ActionNodes
	ActionUnhealthyNodes
	ActionNodeUsage
	ActionQuit
)

var actionNames = map[Action]string{
	ActionInvalid:        "invalid",
	ActionEvents:         "events",
	ActionRestarts:       "restarts",
	ActionPods:           "pods",
	ActionNonRunningPods: "non-running-pods",
	ActionPodCounts:      "pod-counts",
	ActionNodes:          "nodes",
	ActionUnhealthyNodes: "unhealthy-nodes",
	ActionNodeUsage:      "node-usage",
	ActionQuit:           "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// actionTokens maps what the operator types to the action it selects
var actionTokens = map[string]Action{
	"1": ActionEvents,
	"2": ActionRestarts,
	"3": ActionPods,
	"4": ActionNonRunningPods,
	"5": ActionPodCounts,
	"6": ActionNodes,
	"7": ActionUnhealthyNodes,
	"8": ActionNodeUsage,
	"q": ActionQuit,
	"Q": ActionQuit,
}

// menuOrder is the order actions are listed in the menu
var menuOrder = []struct {
	token  string
	action Action
	key    string
}{
	{"1", ActionEvents, "menu.events"},
	{"2", ActionRestarts, "menu.restarts"},
	{"3", ActionPods, "menu.pods"},
	{"4", ActionNonRunningPods, "menu.non_running_pods"},
	{"5", ActionPodCounts, "menu.pod_counts"},
	{"6", ActionNodes, "menu.nodes"},
	{"7", ActionUnhealthyNodes, "menu.unhealthy_nodes"},
	{"8", ActionNodeUsage, "menu.node_usage"},
	{"Q", ActionQuit, "menu.quit"},
}

// ParseAction returns the action bound to token, or ActionInvalid
func ParseAction(token string) Action {
	if action, ok := actionTokens[strings.TrimSpace(token)]; ok {
		return action
	}
	return ActionInvalid
}

// Reason tells why the menu loop ended
type Reason int

const (
	ReasonQuit Reason = iota
	ReasonEOF
	ReasonInterrupt
)

func (r Reason) String() string {
	switch r {
	case ReasonQuit:
		return "quit"
	case ReasonEOF:
		return "eof"
	case ReasonInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// ExitCode is the process exit status for the reason.
// 130 is 128 + SIGINT.
func (r Reason) ExitCode() int {
	if r == ReasonInterrupt {
		return 130
	}
	return 0
}

// Termination is the result of Controller.Run
type Termination struct {
	Reason Reason
	Code   int
}

func terminated(r Reason) Termination {
	return Termination{Reason: r, Code: r.ExitCode()}
}
