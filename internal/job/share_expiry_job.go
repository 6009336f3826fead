package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type ShareExpirer interface {
	DisableSharesBefore(ctx context.Context, cutoff int64) (int64, error)
}

// ShareExpiryJob turns off share links issued more than maxAgeDays ago.
// Tokens stay stored, so an owner can still rotate a fresh link.
type ShareExpiryJob struct {
	shares     ShareExpirer
	maxAgeDays int
	now        func() time.Time
}

func NewShareExpiryJob(shares ShareExpirer, maxAgeDays int) *ShareExpiryJob {
	return &ShareExpiryJob{shares: shares, maxAgeDays: maxAgeDays, now: time.Now}
}

func (j *ShareExpiryJob) Name() string {
	return "share_expiry"
}

func (j *ShareExpiryJob) Run(ctx context.Context) error {
	if j.shares == nil || j.maxAgeDays <= 0 {
		return nil
	}
	cutoff := j.now().Add(-time.Duration(j.maxAgeDays) * 24 * time.Hour).Unix()
	affected, err := j.shares.DisableSharesBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if affected > 0 {
		logutil.GetLogger(ctx).Info("expired share links disabled",
			zap.Int64("count", affected),
			zap.Int64("cutoff", cutoff),
		)
	}
	return nil
}
