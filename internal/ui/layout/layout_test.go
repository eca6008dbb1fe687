package layout

import (
	"strings"
	"testing"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{MinWidth, MinHeight, false},
		{MinWidth - 1, MinHeight, true},
		{MinWidth, MinHeight - 1, true},
		{200, 60, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestContentHeightNeverNegative(t *testing.T) {
	if got := ContentHeight(2); got != 0 {
		t.Errorf("ContentHeight(2) = %d, want 0", got)
	}
	if got := ContentHeight(30); got != 24 {
		t.Errorf("ContentHeight(30) = %d, want 24", got)
	}
}

func TestHeaderShowsPlayerAndOfflineBadge(t *testing.T) {
	out := RenderHeader("Level 3", HeaderInfo{Player: "Ada", Offline: true}, 80)
	for _, want := range []string{"Times Tables", "Level 3", "Ada", "OFFLINE"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q", want)
		}
	}

	out = RenderHeader("Home", HeaderInfo{}, 80)
	if strings.Contains(out, "OFFLINE") {
		t.Error("online header should not show the offline badge")
	}
}

func TestFooterListsHints(t *testing.T) {
	out := RenderFooter([]KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Quit"}}, 80)
	for _, want := range []string{"Enter", "Submit", "Esc", "Quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("footer missing %q", want)
		}
	}
}
