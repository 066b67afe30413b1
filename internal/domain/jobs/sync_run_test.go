package jobs

import "testing"

func TestSyncStateTerminal(t *testing.T) {
	for _, s := range []SyncState{SyncIdle, SyncFetchingCharacters, SyncStoringStarships, SyncFillingRelationships} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	if !SyncDone.Terminal() || !SyncFailed.Terminal() {
		t.Fatalf("done and failed must be terminal")
	}
}
