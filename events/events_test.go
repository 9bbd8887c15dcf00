package events

import (
	"context"
	"errors"
	"testing"

	"github.com/pocketplan/budget-api/models"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func confirmedDelivery(t *testing.T, ack amqp091.Acknowledger) amqp091.Delivery {
	t.Helper()
	body, err := NewUserConfirmedMessage(models.ConfirmedUser{
		UserID:   "user-1",
		Email:    "ana@example.com",
		Metadata: &models.SignupMetadata{Income: "4000"},
	}).ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	return amqp091.Delivery{Acknowledger: ack, Body: body}
}

func TestHandleDelivery_Success(t *testing.T) {
	ack := &fakeAcknowledger{}
	var got models.ConfirmedUser

	HandleDelivery(context.Background(), confirmedDelivery(t, ack), func(ctx context.Context, user models.ConfirmedUser) error {
		got = user
		return nil
	})

	if !ack.acked || ack.nacked {
		t.Errorf("ack = %+v, want acked", ack)
	}
	if got.UserID != "user-1" || got.Metadata == nil || got.Metadata.Income != "4000" {
		t.Errorf("handler got %+v", got)
	}
}

func TestHandleDelivery_HandlerFailureRequeues(t *testing.T) {
	ack := &fakeAcknowledger{}

	HandleDelivery(context.Background(), confirmedDelivery(t, ack), func(ctx context.Context, user models.ConfirmedUser) error {
		return errors.New("store unavailable")
	})

	if !ack.nacked || !ack.requeue {
		t.Errorf("ack = %+v, want nack with requeue", ack)
	}
}

func TestHandleDelivery_MalformedIsDropped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing user id", `{"email":"ana@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			called := false

			HandleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte(tt.body)},
				func(ctx context.Context, user models.ConfirmedUser) error {
					called = true
					return nil
				})

			if called {
				t.Error("handler called for a malformed message")
			}
			if !ack.nacked || ack.requeue {
				t.Errorf("ack = %+v, want nack without requeue", ack)
			}
		})
	}
}

func TestUserConfirmedMessageFromJSON_MissingUserID(t *testing.T) {
	if _, err := UserConfirmedMessageFromJSON([]byte(`{}`)); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("error = %v, want ErrMissingUserID", err)
	}
}
