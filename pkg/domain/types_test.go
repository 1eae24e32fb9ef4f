package domain

import "testing"

func TestUploadStatusForwardTransitions(t *testing.T) {
	allowed := map[UploadStatus][]UploadStatus{
		StatusPending:        {StatusReadyForUpload, StatusFailed},
		StatusReadyForUpload: {StatusUploaded, StatusFailed},
		StatusUploaded:       {},
		StatusFailed:         {},
	}
	all := []UploadStatus{StatusPending, StatusReadyForUpload, StatusUploaded, StatusFailed}
	for from, nexts := range allowed {
		ok := map[UploadStatus]bool{}
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			if got := from.CanTransition(to); got != ok[to] {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestUploadStatusNoBackwardTransition(t *testing.T) {
	if StatusUploaded.CanTransition(StatusReadyForUpload) {
		t.Fatalf("uploaded must never move back to ready_for_upload")
	}
	if StatusFailed.CanTransition(StatusPending) {
		t.Fatalf("failed is terminal")
	}
}
