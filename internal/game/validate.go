package game

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// FormField names used as FormErrors keys. FieldForm holds errors that are not
// tied to a single input.
const (
	FieldForm     = "_form"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldConfirm  = "confirm"

	FieldTitle                = "title"
	FieldSlug                 = "url_slug"
	FieldWordRoundLength      = "word_round_length"
	FieldSlicingInterval      = "slicing_interval"
	FieldMinBlindSubmissions  = "min_blind_submissions"
	FieldBlindSubmissionValue = "blind_submission_value"
	FieldDecayHalfLife        = "decay_half_life"
	FieldSeedCapital          = "seed_capital"
)

// FormErrors maps a field name to its error messages.
type FormErrors map[string][]string

func (e FormErrors) Add(field, msg string) { e[field] = append(e[field], msg) }

// First returns the first message for field, or "".
func (e FormErrors) First(field string) string {
	if len(e[field]) == 0 {
		return ""
	}
	return e[field][0]
}

func (e FormErrors) Has(field string) bool { return len(e[field]) > 0 }

// orNil returns nil when nothing was recorded, so callers can test err == nil.
func (e FormErrors) orNil() FormErrors {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return e
		}
	}
	return nil
}

// AdminLookup finds administrators by username.
type AdminLookup interface {
	AdminByName(ctx context.Context, username string) (Admin, bool, error)
}

// HaikuLookup finds haikus by their unique fields.
type HaikuLookup interface {
	HaikuBySlug(ctx context.Context, slug string) (Haiku, bool, error)
	HaikuByTitle(ctx context.Context, title string) (Haiku, bool, error)
}

// ValidateAdminRegistration checks a new administrator form. It returns nil
// FormErrors when the form is valid; err is only set when the lookup fails.
func ValidateAdminRegistration(ctx context.Context, admins AdminLookup, username, password, confirm string) (FormErrors, error) {
	errs := FormErrors{}
	username = strings.TrimSpace(username)

	switch {
	case username == "":
		errs.Add(FieldUsername, MsgNoUsername)
	case !UsernameKeySafe(username):
		errs.Add(FieldUsername, MsgUsernameEndsInDigit)
	default:
		_, taken, err := admins.AdminByName(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add(FieldUsername, MsgUsernameTaken)
		}
	}

	if password == "" {
		errs.Add(FieldPassword, MsgNoPassword)
	}

	if confirm == "" {
		errs.Add(FieldConfirm, MsgNoConfirm)
	} else if password != confirm {
		errs.Add(FieldConfirm, MsgConfirmDoesNotMatch)
	}

	return errs.orNil(), nil
}

// UsernameKeySafe reports whether username can prefix a slicer key. Slicer
// keys are the owner's username followed by the decimal haiku id, so a
// trailing digit would let "alice1"+"2" collide with "alice"+"12".
func UsernameKeySafe(username string) bool {
	if username == "" {
		return false
	}
	last := username[len(username)-1]
	return last < '0' || last > '9'
}

// ValidateAdminLogin checks a login attempt and returns the matching admin
// when the credentials are valid.
func ValidateAdminLogin(ctx context.Context, admins AdminLookup, username, password string) (Admin, FormErrors, error) {
	errs := FormErrors{}
	username = strings.TrimSpace(username)

	if username == "" {
		errs.Add(FieldUsername, MsgNoUsername)
	}
	if password == "" {
		errs.Add(FieldPassword, MsgNoPassword)
	}
	if username == "" || password == "" {
		return Admin{}, errs, nil
	}

	admin, ok, err := admins.AdminByName(ctx, username)
	if err != nil {
		return Admin{}, nil, err
	}
	switch {
	case !ok:
		errs.Add(FieldUsername, MsgUsernameDoesNotExist)
	case !admin.IsAdmin:
		errs.Add(FieldForm, MsgNotAuthorized)
	case !admin.CheckPassword(password):
		errs.Add(FieldPassword, MsgIncorrectPassword)
	}
	if errs = errs.orNil(); errs != nil {
		return Admin{}, errs, nil
	}
	return admin, nil, nil
}

var reSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateHaiku checks a new haiku form.
func ValidateHaiku(ctx context.Context, haikus HaikuLookup, f HaikuForm) (FormErrors, error) {
	errs := FormErrors{}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		errs.Add(FieldTitle, MsgNoTitle)
	} else {
		_, taken, err := haikus.HaikuByTitle(ctx, title)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add(FieldTitle, MsgTitleTaken)
		}
	}

	slug := strings.TrimSpace(f.Slug)
	if slug == "" {
		errs.Add(FieldSlug, MsgNoSlug)
	} else {
		if !reSlug.MatchString(slug) {
			errs.Add(FieldSlug, MsgBadSlug)
		}
		_, taken, err := haikus.HaikuBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add(FieldSlug, MsgSlugTaken)
		}
	}

	checkInt(errs, FieldWordRoundLength, f.WordRoundLength, MsgNoRoundLength)
	if n, ok := checkInt(errs, FieldSlicingInterval, f.SlicingInterval, MsgNoInterval); ok && n <= 0 {
		errs.Add(FieldSlicingInterval, MsgMustBePositive)
	}
	checkInt(errs, FieldMinBlindSubmissions, f.MinBlindSubmissions, MsgNoMinSubmissions)
	checkInt(errs, FieldBlindSubmissionValue, f.BlindSubmissionValue, MsgNoSubmissionValue)
	checkInt(errs, FieldDecayHalfLife, f.DecayHalfLife, MsgNoHalfLife)
	checkInt(errs, FieldSeedCapital, f.SeedCapital, MsgNoCapital)

	return errs.orNil(), nil
}

// checkInt records a missing or non-integer value and returns the parsed value.
func checkInt(errs FormErrors, field, raw, missing string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.Add(field, missing)
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(field, MsgMustBeInt)
		return 0, false
	}
	return n, true
}
