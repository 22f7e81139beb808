package generate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/inference"
)

func TestResponseGenerator_AcceptsRemoteText(t *testing.T) {
	want := "Thank you so much for the kind words! We're delighted you enjoyed your visit."
	stub := &stubGenerator{out: inference.Succeeded("  " + want + "\n")}
	g := NewResponseGenerator(stub, nil)

	reply := g.Generate(context.Background(), 5, "Amazing food and service tonight!")

	if reply.Text != want {
		t.Errorf("Text = %q, want %q", reply.Text, want)
	}
	if reply.Source != SourceRemote {
		t.Errorf("Source = %q, want remote", reply.Source)
	}
	if stub.last.MaxNewTokens != 100 {
		t.Errorf("MaxNewTokens = %d, want 100", stub.last.MaxNewTokens)
	}
	if stub.n != 1 {
		t.Errorf("remote calls = %d, want exactly 1", stub.n)
	}
}

func TestResponseGenerator_ShortTextFallsBack(t *testing.T) {
	// 20 characters exactly is not enough.
	stub := &stubGenerator{out: inference.Succeeded("Thanks for the visit")}
	reply := NewResponseGenerator(stub, nil).Generate(context.Background(), 4, "Lovely evening out")

	if reply.Text != ReplyTemplates[feedback.Positive] {
		t.Errorf("Text = %q, want positive template", reply.Text)
	}
	if reply.Outcome != inference.ValidationFailure {
		t.Errorf("Outcome = %q, want validation_failure", reply.Outcome)
	}
}

func TestResponseGenerator_FallbackBuckets(t *testing.T) {
	want := map[int]string{
		1: ReplyTemplates[feedback.Negative],
		2: ReplyTemplates[feedback.Negative],
		3: ReplyTemplates[feedback.Neutral],
		4: ReplyTemplates[feedback.Positive],
		5: ReplyTemplates[feedback.Positive],
	}
	for mode, out := range failureModes {
		for rating := 1; rating <= 5; rating++ {
			t.Run(fmt.Sprintf("%s/%d", mode, rating), func(t *testing.T) {
				reply := NewResponseGenerator(&stubGenerator{out: out}, nil).
					Generate(context.Background(), rating, "The soup was cold today")
				if reply.Text == "" {
					t.Fatal("reply must never be empty")
				}
				if reply.Text != want[rating] {
					t.Errorf("Text = %q, want %q", reply.Text, want[rating])
				}
				if reply.Source != SourceFallback {
					t.Errorf("Source = %q, want fallback", reply.Source)
				}
			})
		}
	}
}

func TestResponseGenerator_PositiveTemplateLiteral(t *testing.T) {
	stub := &stubGenerator{out: inference.Failed(inference.TransportFailure, "timeout")}
	reply := NewResponseGenerator(stub, nil).Generate(context.Background(), 5, "Amazing food and service tonight!")

	want := "Thank you so much for your wonderful feedback! We're thrilled to hear you had a great experience with us. We look forward to serving you again!"
	if reply.Text != want {
		t.Errorf("Text = %q, want %q", reply.Text, want)
	}
}

func TestBuildResponsePrompt(t *testing.T) {
	tests := []struct {
		rating int
		tone   string
	}{
		{5, "warm and grateful"},
		{3, "Be understanding"},
		{1, "apologetic and solution-focused"},
	}
	for _, tt := range tests {
		prompt := BuildResponsePrompt(tt.rating, "Waited forty minutes")
		if !strings.Contains(prompt, tt.tone) {
			t.Errorf("prompt for %d missing tone %q:\n%s", tt.rating, tt.tone, prompt)
		}
		if !strings.Contains(prompt, fmt.Sprintf("Customer gave %d/5 stars: \"Waited forty minutes\"", tt.rating)) {
			t.Errorf("prompt for %d missing rating/review:\n%s", tt.rating, prompt)
		}
	}
}
