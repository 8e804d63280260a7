package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// MemberService manages the household roster.
type MemberService struct {
	members MemberStore
	logger  zerolog.Logger
}

func NewMemberService(members MemberStore, logger zerolog.Logger) *MemberService {
	return &MemberService{members: members, logger: logger}
}

func (s *MemberService) List(ctx context.Context) ([]string, error) {
	return s.members.ListNames(ctx)
}

// Exists reports whether name is on the roster.
func (s *MemberService) Exists(ctx context.Context, name string) (bool, error) {
	names, err := s.members.ListNames(ctx)
	if err != nil {
		return false, err
	}
	return containsName(names, name), nil
}

// Seed adds the given members when the roster is empty.
func (s *MemberService) Seed(ctx context.Context, names []string) error {
	existing, err := s.members.ListNames(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.members.Add(ctx, name); err != nil {
			return fmt.Errorf("seed member %s: %w", name, err)
		}
		s.logger.Info().Str("member", name).Msg("seeded member")
	}
	return nil
}

// Add validates and capitalises name, then appends it to the roster.
func (s *MemberService) Add(ctx context.Context, name string) (string, error) {
	name, err := NormalizeMemberName(name)
	if err != nil {
		return "", err
	}
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("member %q: %w", name, ErrAlreadyExists)
	}
	if err := s.members.Add(ctx, name); err != nil {
		return "", err
	}
	s.logger.Info().Str("member", name).Msg("member added")
	return name, nil
}

// Remove deletes a member and everything they own. The last member stays.
func (s *MemberService) Remove(ctx context.Context, name string) error {
	names, err := s.members.ListNames(ctx)
	if err != nil {
		return err
	}
	if !containsName(names, name) {
		return fmt.Errorf("member %q: %w", name, ErrNotFound)
	}
	if len(names) <= 1 {
		return ErrLastMember
	}
	if err := s.members.Remove(ctx, name); err != nil {
		return err
	}
	s.logger.Info().Str("member", name).Msg("member removed")
	return nil
}

// NormalizeMemberName checks a new name is 3–20 letters or digits and
// returns it with the first letter upper-cased and the rest lower-cased.
func NormalizeMemberName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("member name is empty: %w", ErrValidation)
	}
	n := utf8.RuneCountInString(name)
	if n < 3 || n > 20 {
		return "", fmt.Errorf("member name must be 3-20 characters: %w", ErrValidation)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", fmt.Errorf("member name must be alphanumeric: %w", ErrValidation)
		}
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:]), nil
}
