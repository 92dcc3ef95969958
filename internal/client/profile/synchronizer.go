package profile

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/client/remote"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/logging"
	"github.com/dmitrijs2005/hrmis/internal/timex"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// State is the synchronizer's activity as seen by the view layer.
type State int

const (
	Idle State = iota
	Saving
	Uploading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Saving:
		return "saving"
	case Uploading:
		return "uploading"
	default:
		return "unknown"
	}
}

// PlaceholderInitials is shown when the profile has no usable name.
const PlaceholderInitials = "?"

// NewAvatarKey builds a storage key unique per call: the owner's ID, a
// random UUID and the file extension.
func NewAvatarKey(userID, ext string) string {
	return fmt.Sprintf("%s/%s.%s", userID, uuid.NewString(), ext)
}

// Synchronizer is safe for concurrent use.
type Synchronizer struct {
	records remote.RecordStore
	objects remote.ObjectStore
	logger  logging.Logger
	now     func() time.Time
	newKey  func(userID, ext string) string

	mu        sync.Mutex
	profile   *models.Profile
	avatarURL string
	saving    bool
	uploading bool
	// issued numbers every remote read or write when it is sent; applied
	// is the number behind the installed copy.
	issued  uint64
	applied uint64
}

// Option customises a Synchronizer.
type Option func(*Synchronizer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithKeyFunc overrides NewAvatarKey.
func WithKeyFunc(f func(userID, ext string) string) Option {
	return func(s *Synchronizer) { s.newKey = f }
}

func NewSynchronizer(records remote.RecordStore, objects remote.ObjectStore, logger logging.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		records: records,
		objects: objects,
		logger:  logger,
		now:     time.Now,
		newKey:  NewAvatarKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the profile of userID, creating a minimal one on first
// login. Any other failure is reported as common.ErrRecord; callers treat
// it as an unusable session.
func (s *Synchronizer) Load(ctx context.Context, userID string) (*models.Profile, error) {
	seq := s.nextSeq()
	p, err := s.records.GetRecord(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		now := s.now().UTC()
		p, err = s.records.UpsertRecord(ctx, &models.Profile{ID: userID, UpdatedAt: now, CreatedAt: now})
		if err != nil {
			return nil, fmt.Errorf("%w: create profile: %w", common.ErrRecord, err)
		}
		s.logger.Info(ctx, "profile created on first login", "user_id", userID)
	} else if err != nil {
		return nil, fmt.Errorf("%w: load profile: %w", common.ErrRecord, err)
	}

	url := s.ResolveAvatarURL(ctx, p.AvatarRef)

	s.mu.Lock()
	s.profile = p.Clone()
	s.avatarURL = url
	s.applied = max(s.applied, seq)
	s.mu.Unlock()

	return p.Clone(), nil
}

// ResolveAvatarURL returns the display URL for ref, or "" when there is no
// avatar or the store cannot resolve it right now. Resolution failures are
// never fatal: the view falls back to initials.
func (s *Synchronizer) ResolveAvatarURL(ctx context.Context, ref *string) string {
	if ref == nil || *ref == "" {
		return ""
	}
	url, err := s.objects.ResolvePublicURL(ctx, *ref)
	if err != nil {
		s.logger.Warn(ctx, "avatar url resolution failed", "key", *ref, "error", err)
		return ""
	}
	return url
}

// UpdateAvatar uploads data under a fresh key and then points the profile
// at it. If the upload fails the profile is untouched. If the record write
// fails after a successful upload the profile is also untouched and the
// blob stays orphaned in the store.
func (s *Synchronizer) UpdateAvatar(ctx context.Context, userID string, data []byte, ext string) (*models.Profile, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" || len(data) == 0 {
		return nil, common.NewValidationError("You must select an image to upload.")
	}

	if !s.begin(&s.uploading) {
		return nil, common.ErrBusy
	}
	defer s.end(&s.uploading)

	key := s.newKey(userID, ext)

	if err := s.objects.UploadBlob(ctx, key, data, contentType(ext)); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUpload, err)
	}

	seq := s.nextSeq()
	p, err := s.records.UpdateRecord(ctx, userID, models.ProfilePatch{
		AvatarRef: &key,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn(ctx, "avatar uploaded but profile not updated, blob orphaned", "user_id", userID, "key", key, "error", err)
		return nil, fmt.Errorf("%w: save avatar: %w", common.ErrRecord, err)
	}

	s.settle(ctx, p, seq)
	return p.Clone(), nil
}

// UpdateFields writes the patched fields. A new birthday recomputes the
// age as of today; UpdatedAt is always refreshed. Only patched columns
// change remotely, and the stored result becomes the local state.
func (s *Synchronizer) UpdateFields(ctx context.Context, userID string, patch models.FieldsPatch) (*models.Profile, error) {
	if patch.Empty() {
		return nil, common.NewValidationError("Nothing to update")
	}

	now := s.now()
	update := models.ProfilePatch{UpdatedAt: now.UTC()}

	if patch.FullName != nil {
		name := models.NormalizeName(*patch.FullName)
		if name == "" {
			return nil, common.NewValidationError("Full name cannot be empty")
		}
		update.FullName = &name
	}

	if patch.Birthday != nil {
		y, m, d := patch.Birthday.Date()
		bday := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		age := timex.WholeYearsBetween(bday, now)
		if age < 0 {
			return nil, common.NewValidationError("Birthday cannot be in the future")
		}
		update.Birthday = &bday
		update.Age = &age
	}

	if !s.begin(&s.saving) {
		return nil, common.ErrBusy
	}
	defer s.end(&s.saving)

	seq := s.nextSeq()
	p, err := s.records.UpdateRecord(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("%w: save profile: %w", common.ErrRecord, err)
	}

	s.settle(ctx, p, seq)
	return p.Clone(), nil
}

// Profile returns a copy of the last acknowledged profile, nil before Load.
func (s *Synchronizer) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// AvatarURL returns the resolved display URL, "" for the placeholder.
func (s *Synchronizer) AvatarURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avatarURL
}

// Initials returns the placeholder shown instead of an avatar.
func (s *Synchronizer) Initials() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Initials(s.profile.DisplayName())
}

// State reports Uploading or Saving while such an operation is in flight.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.uploading:
		return Uploading
	case s.saving:
		return Saving
	default:
		return Idle
	}
}

// Reset drops the local copy, e.g. after sign-out.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.avatarURL = ""
}

var upper = cases.Upper(language.Und)

// Initials takes the first letter of each word of name, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteString(upper.String(string(r)))
	}
	if b.Len() == 0 {
		return PlaceholderInitials
	}
	return b.String()
}

func (s *Synchronizer) begin(flag *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

func (s *Synchronizer) end(flag *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*flag = false
}

func (s *Synchronizer) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// settle installs the acknowledged result of write seq. A reply that is
// older than the installed copy may predate a write it overlapped with, so
// the record is read back instead of guessing the remote order.
func (s *Synchronizer) settle(ctx context.Context, p *models.Profile, seq uint64) {
	if s.commit(p, s.ResolveAvatarURL(ctx, p.AvatarRef), seq) {
		return
	}

	s.logger.Debug(ctx, "stale profile reply, reloading", "user_id", p.ID, "seq", seq)
	readSeq := s.nextSeq()
	fresh, err := s.records.GetRecord(ctx, p.ID)
	if err != nil {
		s.logger.Warn(ctx, "profile reload after overlapping writes failed", "user_id", p.ID, "error", err)
		return
	}
	s.commit(fresh, s.ResolveAvatarURL(ctx, fresh.AvatarRef), readSeq)
}

// commit installs p as the local copy unless a later read or write has
// already been installed. A result for another user is dropped and counts
// as handled.
func (s *Synchronizer) commit(p *models.Profile, url string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile != nil && s.profile.ID != p.ID {
		return true
	}
	if seq < s.applied {
		return false
	}
	s.profile = p.Clone()
	s.avatarURL = url
	s.applied = seq
	return true
}

func contentType(ext string) string {
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
