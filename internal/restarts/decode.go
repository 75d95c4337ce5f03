package restarts

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// rawPod mirrors the parts of a pod manifest the scanner needs. Timestamps are
// kept as strings so one malformed value does not reject the whole document.
type rawPod struct {
	Kind     string `json:"kind"`
	Metadata struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	} `json:"metadata"`
	Status struct {
		ContainerStatuses []struct {
			Name         string `json:"name"`
			RestartCount int32  `json:"restartCount"`
			LastState    struct {
				Terminated *struct {
					FinishedAt string `json:"finishedAt"`
					Reason     string `json:"reason"`
					ExitCode   int32  `json:"exitCode"`
				} `json:"terminated"`
			} `json:"lastState"`
		} `json:"containerStatuses"`
	} `json:"status"`
}

type rawPodList struct {
	Kind  string   `json:"kind"`
	Items []rawPod `json:"items"`
}

// DecodePodList reads a pod or pod list dump (JSON or YAML, as written by
// `kubectl get pods -o json|yaml`) into restart records.
func DecodePodList(data []byte) ([]Record, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert pod dump: %w", err)
	}

	var list rawPodList
	if err := json.Unmarshal(jsonData, &list); err != nil {
		return nil, fmt.Errorf("failed to decode pod dump: %w", err)
	}

	pods := list.Items
	if list.Kind == "Pod" {
		var pod rawPod
		if err := json.Unmarshal(jsonData, &pod); err != nil {
			return nil, fmt.Errorf("failed to decode pod: %w", err)
		}
		pods = []rawPod{pod}
	}

	records := make([]Record, 0)
	for _, pod := range pods {
		for _, cs := range pod.Status.ContainerStatuses {
			term := cs.LastState.Terminated
			if term == nil {
				continue
			}
			records = append(records, Record{
				Namespace:    pod.Metadata.Namespace,
				Pod:          pod.Metadata.Name,
				Container:    cs.Name,
				FinishedAt:   term.FinishedAt,
				Reason:       term.Reason,
				ExitCode:     term.ExitCode,
				RestartCount: cs.RestartCount,
			})
		}
	}
	return records, nil
}
