package identity

import (
	"context"
	"errors"
	"net"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kidandcat/fridge/internal/supabase"
)

type Kind int

const (
	Unknown Kind = iota
	InvalidCredentials
	EmailNotConfirmed
	InvalidRedirect
	AlreadyRegistered
	WeakPassword
	Unreachable
)

// Error is an authentication failure classified for display.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Provider messages are matched by substring, the way the hosted
// provider phrases them.
var patterns = []struct {
	substr string
	kind   Kind
}{
	{"Invalid login credentials", InvalidCredentials},
	{"Email not confirmed", EmailNotConfirmed},
	{"requested path is invalid", InvalidRedirect},
	{"User already registered", AlreadyRegistered},
	{"Password should be", WeakPassword},
}

// Classify wraps a provider error in an *Error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr
	}

	msg := err.Error()
	if apiErr, ok := supabase.AsAPIError(err); ok {
		msg = apiErr.Message
	} else {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: Unreachable, Message: msg, Err: err}
		}
	}
	for _, p := range patterns {
		if strings.Contains(msg, p.substr) {
			return &Error{Kind: p.kind, Message: msg, Err: err}
		}
	}
	return &Error{Kind: Unknown, Message: msg, Err: err}
}

// Message keys. English text doubles as the key.
const (
	msgInvalidCredentials = "Invalid email or password. Check your email and password."
	msgEmailNotConfirmed  = "Your email has not been confirmed yet. Check your inbox."
	msgInvalidRedirect    = "Routing error. Please refresh the page and try again."
	msgAlreadyRegistered  = "A user with this email is already registered. Please sign in."
	msgWeakPassword       = "The password must be at least 6 characters long."
	msgSignInFailed       = "Sign in failed. Please try again."
	msgUnexpected         = "An error occurred. Please try again later."

	MsgConfirmationSent = "A confirmation email was sent. Click the link in it to finish signing up."
	MsgSignedUp         = "Registration succeeded! You can sign in now."
)

var hebrew = map[string]string{
	msgInvalidCredentials: "פרטי התחברות שגויים. בדוק את האימייל והסיסמה שלך.",
	msgEmailNotConfirmed:  "האימייל טרם אומת. בדוק את תיבת הדואר שלך.",
	msgInvalidRedirect:    "שגיאת ניתוב. אנא רענן את הדף ונסה שוב.",
	msgAlreadyRegistered:  "משתמש עם אימייל זה כבר רשום. אנא התחבר.",
	msgWeakPassword:       "הסיסמה צריכה להיות באורך של לפחות 6 תווים.",
	msgSignInFailed:       "התחברות נכשלה. נסה שוב.",
	msgUnexpected:         "אירעה שגיאה. נסה שוב מאוחר יותר.",
	MsgConfirmationSent:   "נשלח מייל אימות. לחץ על הקישור במייל כדי להשלים את ההרשמה.",
	MsgSignedUp:           "ההרשמה הצליחה! אתה יכול להתחבר כעת.",
}

func init() {
	for key, text := range hebrew {
		_ = message.SetString(language.Hebrew, key, text)
		_ = message.SetString(language.English, key, key)
	}
}

var kindMessages = map[Kind]string{
	InvalidCredentials: msgInvalidCredentials,
	EmailNotConfirmed:  msgEmailNotConfirmed,
	InvalidRedirect:    msgInvalidRedirect,
	AlreadyRegistered:  msgAlreadyRegistered,
	WeakPassword:       msgWeakPassword,
	Unreachable:        msgUnexpected,
}

// Describe renders err as a user-facing sentence in lang. Unrecognised
// provider errors keep the provider's own message.
func Describe(err error, lang language.Tag) string {
	if err == nil {
		return ""
	}
	p := message.NewPrinter(lang)
	var idErr *Error
	if !errors.As(Classify(err), &idErr) {
		return p.Sprintf(msgUnexpected)
	}
	if key, ok := kindMessages[idErr.Kind]; ok {
		return p.Sprintf(key)
	}
	if idErr.Message != "" {
		return idErr.Message
	}
	return p.Sprintf(msgSignInFailed)
}

// Text translates one of the exported message keys.
func Text(key string, lang language.Tag) string {
	return message.NewPrinter(lang).Sprintf(key)
}

// ParseLanguage maps a browser language string to a supported tag.
func ParseLanguage(s string) language.Tag {
	matcher := language.NewMatcher([]language.Tag{language.English, language.Hebrew})
	tag, _ := language.MatchStrings(matcher, s)
	base, _ := tag.Base()
	if base.String() == "he" {
		return language.Hebrew
	}
	return language.English
}
