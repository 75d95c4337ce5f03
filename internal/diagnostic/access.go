package diagnostic

import (
	"context"
	"fmt"
	"strings"

	authorizationv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	authorizationclient "k8s.io/client-go/kubernetes/typed/authorization/v1"
)

// Permission is one cluster-wide RBAC check
type Permission struct {
	Verb        string
	Resource    string
	Subresource string
}

func (p Permission) String() string {
	if p.Subresource == "" {
		return p.Verb + " " + p.Resource
	}
	return p.Verb + " " + p.Resource + "/" + p.Subresource
}

// KubeletProxy is needed to read node usage from the kubelet summary API
var KubeletProxy = Permission{Verb: "get", Resource: "nodes", Subresource: "proxy"}

// ConsolePermissions are the reads the menu actions depend on
var ConsolePermissions = []Permission{
	{Verb: "list", Resource: "namespaces"},
	{Verb: "list", Resource: "nodes"},
	{Verb: "list", Resource: "pods"},
	{Verb: "list", Resource: "events"},
	{Verb: "get", Resource: "pods", Subresource: "log"},
}

// AccessResult is the answer to a SelfSubjectAccessReview
type AccessResult struct {
	Permission Permission
	Allowed    bool
	Reason     string
}

// Message returns a short explanation for the operator, or "" when access is allowed
func (r AccessResult) Message() string {
	if r.Allowed {
		return ""
	}
	reason := r.Reason
	if reason == "" {
		reason = "current credentials cannot " + r.Permission.String()
	}
	return fmt.Sprintf("%s; run `kubectl auth can-i %s` or grant the RBAC permission", reason, r.Permission)
}

// CanI asks the API server whether the current identity holds p in every
// namespace
func CanI(ctx context.Context, client authorizationclient.AuthorizationV1Interface, p Permission) (AccessResult, error) {
	sar := &authorizationv1.SelfSubjectAccessReview{
		Spec: authorizationv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authorizationv1.ResourceAttributes{
				Verb:        p.Verb,
				Resource:    p.Resource,
				Subresource: p.Subresource,
			},
		},
	}

	resp, err := client.SelfSubjectAccessReviews().Create(ctx, sar, metav1.CreateOptions{})
	if err != nil {
		return AccessResult{}, fmt.Errorf("failed to review %s access: %w", p, err)
	}

	result := AccessResult{Permission: p, Allowed: resp.Status.Allowed}
	if !result.Allowed {
		var details []string
		for _, d := range []string{resp.Status.Reason, resp.Status.EvaluationError} {
			if d = strings.TrimSpace(d); d != "" {
				details = append(details, d)
			}
		}
		result.Reason = strings.Join(details, "; ")
	}
	return result, nil
}

// CheckKubeletAccess reports whether node usage can be read through the
// API server node proxy
func CheckKubeletAccess(ctx context.Context, client authorizationclient.AuthorizationV1Interface) (AccessResult, error) {
	return CanI(ctx, client, KubeletProxy)
}

// MissingPermissions returns the denied entries of perms. The first review
// that fails outright aborts the check.
func MissingPermissions(ctx context.Context, client authorizationclient.AuthorizationV1Interface, perms []Permission) ([]AccessResult, error) {
	var denied []AccessResult
	for _, p := range perms {
		result, err := CanI(ctx, client, p)
		if err != nil {
			return nil, err
		}
		if !result.Allowed {
			denied = append(denied, result)
		}
	}
	return denied, nil
}
