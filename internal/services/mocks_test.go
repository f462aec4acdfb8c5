package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tomat/internal/domain"
)

type mockHookRunner struct{ mock.Mock }

func (m *mockHookRunner) Run(ctx context.Context, call domain.HookCall) domain.HookResult {
	args := m.Called(ctx, call)
	return args.Get(0).(domain.HookResult)
}

type mockSoundPlayer struct{ mock.Mock }

func (m *mockSoundPlayer) PlaySound() error {
	return m.Called().Error(0)
}

func (m *mockSoundPlayer) PlaySoundForEvent(eventType string) error {
	return m.Called(eventType).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, summary, body string) error {
	return m.Called(ctx, summary, body).Error(0)
}

type mockHistoryWriter struct{ mock.Mock }

func (m *mockHistoryWriter) Record(ctx context.Context, record domain.PhaseRecord, endedAt time.Time) error {
	return m.Called(ctx, record, endedAt).Error(0)
}
