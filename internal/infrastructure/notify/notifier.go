// Package notify delivers verification codes. QueueNotifier hands them to the
// email worker over RabbitMQ; LogNotifier only logs them for local development.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/config"
	"github.com/oksasatya/member-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/member-directory/pkg/mailer/templates"
)

var ErrNoPublisher = errors.New("email queue not configured")

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type ctxKey struct{}

// WithRequestIP attaches the requesting client IP so the mail can show where
// the code was asked for.
func WithRequestIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

func requestIP(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKey{}).(string)
	return ip
}

type QueueNotifier struct {
	Pub     Publisher
	Cfg     *config.Config
	CodeTTL time.Duration
	Logger  *logrus.Logger
}

func NewQueueNotifier(pub Publisher, cfg *config.Config, codeTTL time.Duration, logger *logrus.Logger) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Cfg: cfg, CodeTTL: codeTTL, Logger: logger}
}

// SendCode enqueues a member_otp email job.
func (n *QueueNotifier) SendCode(ctx context.Context, email, code string) error {
	if n.Pub == nil {
		return ErrNoPublisher
	}
	opts := []mailtpl.Option{mailtpl.WithTime(time.Now())}
	if n.CodeTTL > 0 {
		opts = append(opts, mailtpl.WithExpiresIn(n.CodeTTL))
	}
	if ip := requestIP(ctx); ip != "" {
		opts = append(opts, mailtpl.WithIP(ip))
	}
	job := mailer.EmailJob{
		To:       email,
		Template: mailtpl.MemberOTP,
		Data:     mailtpl.NewMemberOTPData(n.Cfg, "", email, code, opts...),
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil {
		if n.Logger != nil {
			n.Logger.WithError(err).WithField("email", email).Error("enqueue verification code failed")
		}
		return err
	}
	if n.Logger != nil {
		n.Logger.WithField("email", email).Info("verification code queued")
	}
	return nil
}

// LogNotifier writes the code to the log instead of sending it.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SendCode(_ context.Context, email, code string) error {
	n.Logger.WithFields(logrus.Fields{"email": email, "code": code}).Warn("MAIL_SEND_ENABLED=false; verification code not sent")
	return nil
}
