package slack

import (
	"context"
	"errors"
	"testing"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/carscout/internal/notify"
)

type mockClient struct {
	err      error
	channels []string
	calls    int
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.calls++
	m.channels = append(m.channels, channelID)
	return channelID, "ts", m.err
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(Opts{ChannelID: "C123"})
	if err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNew_RequiresChannel(t *testing.T) {
	_, err := New(Opts{BotToken: "xoxb-1"})
	if err == nil {
		t.Fatal("expected error for missing channel id")
	}
}

func TestSend(t *testing.T) {
	mock := &mockClient{}
	n, err := New(Opts{ChannelID: "C123", Client: mock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = n.Send(context.Background(), notify.Event{
		Title:    "Listing purchased",
		Body:     "2018 Honda Civic for $13,500",
		Severity: notify.SeveritySuccess,
		Fields:   []notify.Field{{Name: "Listing", Value: "1"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want 1", mock.calls)
	}
	if mock.channels[0] != "C123" {
		t.Errorf("channel = %q, want C123", mock.channels[0])
	}
}

func TestSend_Error(t *testing.T) {
	mock := &mockClient{err: errors.New("channel_not_found")}
	n, _ := New(Opts{ChannelID: "C123", Client: mock})

	if err := n.Send(context.Background(), notify.Event{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSend_AfterClose(t *testing.T) {
	mock := &mockClient{}
	n, _ := New(Opts{ChannelID: "C123", Client: mock})

	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := n.Send(context.Background(), notify.Event{}); err == nil {
		t.Fatal("expected error sending after Close")
	}
	if mock.calls != 0 {
		t.Error("message posted after Close")
	}
}
