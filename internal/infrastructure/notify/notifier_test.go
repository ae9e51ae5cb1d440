package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/member-directory/config"
	"github.com/oksasatya/member-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/member-directory/pkg/mailer/templates"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

func TestQueueNotifierPublishesMemberOTP(t *testing.T) {
	pub := new(mockPublisher)
	var job mailer.EmailJob
	pub.On("PublishJSON", mock.Anything, mock.AnythingOfType("mailer.EmailJob")).
		Run(func(args mock.Arguments) { job = args.Get(1).(mailer.EmailJob) }).
		Return(nil)

	n := NewQueueNotifier(pub, &config.Config{DirectorySiteLabel: "Temple Directory"}, 10*time.Minute, nil)
	ctx := WithRequestIP(context.Background(), "203.0.113.9")
	require.NoError(t, n.SendCode(ctx, "amit@example.com", "123456"))

	pub.AssertExpectations(t)
	assert.Equal(t, "amit@example.com", job.To)
	assert.Equal(t, mailtpl.MemberOTP, job.Template)
	assert.Equal(t, "123456", job.Data["Code"])
	assert.Equal(t, "203.0.113.9", job.Data["IP"])
	assert.Equal(t, "Temple Directory", job.Data["SiteLabel"])
	assert.NotEmpty(t, job.Data["ExpiresAtText"])
}

func TestQueueNotifierPublishError(t *testing.T) {
	pub := new(mockPublisher)
	boom := errors.New("channel closed")
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(boom)

	n := NewQueueNotifier(pub, &config.Config{}, time.Minute, logrus.New())
	assert.ErrorIs(t, n.SendCode(context.Background(), "a@b.com", "1"), boom)
}

func TestQueueNotifierWithoutPublisher(t *testing.T) {
	n := NewQueueNotifier(nil, &config.Config{}, time.Minute, nil)
	assert.ErrorIs(t, n.SendCode(context.Background(), "a@b.com", "1"), ErrNoPublisher)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	require.NoError(t, NewLogNotifier(logger).SendCode(context.Background(), "a@b.com", "654321"))
	assert.Contains(t, buf.String(), `"code":"654321"`)
	assert.Contains(t, buf.String(), `"email":"a@b.com"`)
}
