package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// GiftClaimer records daily gift claims.
type GiftClaimer interface {
	ClaimDailyGift(ctx context.Context, id int64, day string) (int, bool, error)
}

// Gift is the content of one day's gift folder.
type Gift struct {
	Day     int
	Photos  []string
	Videos  []string
	Message string
}

// Empty reports whether the folder had nothing to send.
func (g Gift) Empty() bool {
	return len(g.Photos) == 0 && len(g.Videos) == 0 && g.Message == ""
}

// Gifts serves the gift of the day of the month from dir/day_N.
type Gifts struct {
	dir    string
	users  GiftClaimer
	now    func() time.Time
	logger *slog.Logger
}

// NewGifts creates a gift service over dir.
func NewGifts(dir string, users GiftClaimer, logger *slog.Logger) *Gifts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gifts{dir: dir, users: users, now: time.Now, logger: logger}
}

// Claim returns today's gift for the user. The second result is false when
// the user already claimed a gift today; the gift is then not returned.
func (g *Gifts) Claim(ctx context.Context, userID int64) (Gift, bool, error) {
	now := g.now()
	day := now.Format(time.DateOnly)

	_, claimed, err := g.users.ClaimDailyGift(ctx, userID, day)
	if err != nil {
		return Gift{}, false, fmt.Errorf("claim daily gift: %w", err)
	}
	if !claimed {
		return Gift{}, false, nil
	}

	gift, err := ReadGift(g.dir, now.Day())
	if err != nil {
		return Gift{}, true, err
	}
	g.logger.Info("daily gift claimed", "user_id", userID, "day", gift.Day)
	return gift, true, nil
}

// ReadGift loads the folder for day of the month.
func ReadGift(dir string, day int) (Gift, error) {
	folder := filepath.Join(dir, fmt.Sprintf("day_%d", day))
	entries, err := os.ReadDir(folder)
	if err != nil {
		return Gift{}, fmt.Errorf("read gift folder: %w", err)
	}

	gift := Gift{Day: day}
	var messages []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(folder, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			gift.Photos = append(gift.Photos, p)
		case ".mp4", ".mov":
			gift.Videos = append(gift.Videos, p)
		case ".txt":
			data, err := os.ReadFile(p)
			if err != nil {
				return Gift{}, fmt.Errorf("read gift message: %w", err)
			}
			messages = append(messages, strings.TrimSpace(string(data)))
		}
	}
	slices.Sort(gift.Photos)
	slices.Sort(gift.Videos)
	gift.Message = strings.Join(messages, "\n")
	return gift, nil
}

// EnsureGiftDirs creates day_1 through day_31 under dir with a default
// message when dir does not exist yet.
func EnsureGiftDirs(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	for day := 1; day <= 31; day++ {
		folder := filepath.Join(dir, fmt.Sprintf("day_%d", day))
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return err
		}
		msg := fmt.Sprintf("هذه هي هدية اليوم %d! 🎁", day)
		if err := os.WriteFile(filepath.Join(folder, "message.txt"), []byte(msg), 0o644); err != nil {
			return err
		}
	}
	return nil
}
