package flow

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/meridianapps/meridian/pkg/authsdk"
)

// SignupStage enumerates the wizard stages.
type SignupStage int

const (
	StageAccount SignupStage = iota
	StageOrganization
	StagePlan
	StageDone
)

// Plan identifiers offered at stage 2. DefaultPlan keeps the final
// payload well-formed when the user never touches the selector.
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"

	DefaultPlan = PlanFree
)

const (
	slugMinLen = 3
	slugMaxLen = 50
)

const msgSignupFailed = "Something went wrong creating your account. Please try again."

// slugShapeRe matches the shape the signup service enforces: hyphens
// only between alphanumerics, never leading or trailing.
var slugShapeRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// stripSlugRe removes everything a slug cannot absorb before the
// whitespace-to-hyphen pass.
var (
	stripSlugRe      = regexp.MustCompile(`[^a-z0-9-\s]`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	repeatedHyphenRe = regexp.MustCompile(`-+`)
)

// DeriveSlug derives a URL-safe workspace identifier from a company
// name: lowercase, strip punctuation, whitespace to hyphens, collapse
// repeats, cap at 50 characters, trim edge hyphens. A name with no
// usable characters derives the empty string.
func DeriveSlug(name string) string {
	s := strings.ToLower(name)
	s = stripSlugRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = repeatedHyphenRe.ReplaceAllString(s, "-")
	if len(s) > slugMaxLen {
		s = s[:slugMaxLen]
	}
	return strings.Trim(s, "-")
}

// AccountInfo is the stage-0 form.
type AccountInfo struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// OrganizationInfo is the stage-1 form.
type OrganizationInfo struct {
	Name string
	Slug string
}

// SignupWizard is the three-stage signup state machine: account, then
// organization, then plan. Each stage validates locally before
// advancing; the one and only network call happens when stage 2
// confirms, with the union of all three stage payloads. Back never
// discards entered data.
type SignupWizard struct {
	client *authsdk.SDKClient

	mu          sync.Mutex
	stage       SignupStage
	account     AccountInfo
	org         OrganizationInfo
	plan        string
	fieldErrors map[string]string
	errMsg      string
	busy        bool
	result      *authsdk.SignupResponse
}

// NewSignupWizard builds a wizard at the account stage with the default
// plan preselected.
func NewSignupWizard(client *authsdk.SDKClient) *SignupWizard {
	return &SignupWizard{client: client, plan: DefaultPlan}
}

// Stage returns the current wizard stage.
func (w *SignupWizard) Stage() SignupStage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Busy reports whether the final submission is in flight.
func (w *SignupWizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Err returns the inline submission error, if any.
func (w *SignupWizard) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// FieldErrors returns the per-field validation messages from the last
// stage submission.
func (w *SignupWizard) FieldErrors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.fieldErrors))
	for k, v := range w.fieldErrors {
		out[k] = v
	}
	return out
}

// Account returns the accumulated stage-0 data.
func (w *SignupWizard) Account() AccountInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account
}

// Organization returns the accumulated stage-1 data.
func (w *SignupWizard) Organization() OrganizationInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.org
}

// Plan returns the selected plan identifier.
func (w *SignupWizard) Plan() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.plan
}

// Result returns the signup response once the wizard is done.
func (w *SignupWizard) Result() *authsdk.SignupResponse {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// SubmitAccount validates the stage-0 form and advances to the
// organization stage. Purely local; no network call is made.
func (w *SignupWizard) SubmitAccount(in AccountInfo) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageAccount || w.busy {
		return false
	}

	errs := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(in.FullName)) < 2 {
		errs["fullName"] = "Enter your full name"
	}
	if !ValidEmail(in.Email) {
		errs["email"] = "Enter a valid email address"
	}
	if !ValidPassword(in.Password) {
		errs["password"] = "Password does not meet the requirements"
	}
	if in.ConfirmPassword != in.Password {
		errs["confirmPassword"] = "Passwords do not match"
	}

	w.fieldErrors = errs
	if len(errs) > 0 {
		return false
	}

	w.account = in
	w.stage = StageOrganization
	return true
}

// SetCompanyName records the company name and re-derives the slug.
// Every keystroke overwrites the previous derivation; a later SetSlug
// wins until the name changes again.
func (w *SignupWizard) SetCompanyName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageOrganization || w.busy {
		return
	}
	w.org.Name = name
	w.org.Slug = DeriveSlug(name)
}

// SetSlug hand-edits the slug.
func (w *SignupWizard) SetSlug(slug string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageOrganization || w.busy {
		return
	}
	w.org.Slug = slug
}

// SubmitOrganization validates the stage-1 form and advances to the
// plan stage. Purely local; no network call is made.
func (w *SignupWizard) SubmitOrganization() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageOrganization || w.busy {
		return false
	}

	errs := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(w.org.Name)) < 2 {
		errs["companyName"] = "Enter your company name"
	}
	if len(w.org.Slug) < slugMinLen || len(w.org.Slug) > slugMaxLen || !slugShapeRe.MatchString(w.org.Slug) {
		errs["slug"] = "Use 3-50 lowercase letters, numbers, or hyphens"
	}

	w.fieldErrors = errs
	if len(errs) > 0 {
		return false
	}

	w.stage = StagePlan
	return true
}

// SelectPlan records the chosen plan. Unknown identifiers are ignored.
func (w *SignupWizard) SelectPlan(plan string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StagePlan || w.busy {
		return
	}
	switch plan {
	case PlanFree, PlanStarter, PlanGrowth, PlanEnterprise:
		w.plan = plan
	}
}

// Back moves to the previous stage without discarding entered data.
func (w *SignupWizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return
	}
	switch w.stage {
	case StageOrganization:
		w.stage = StageAccount
	case StagePlan:
		w.stage = StageOrganization
	}
}

// Submit performs the wizard's single network call with the union of
// the three accumulated stage payloads. Failure keeps the wizard at the
// plan stage with everything the user entered preserved.
func (w *SignupWizard) Submit(ctx context.Context) {
	w.mu.Lock()
	if w.stage != StagePlan || w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.errMsg = ""
	req := authsdk.SignupRequest{
		Account: authsdk.SignupAccount{
			FullName: w.account.FullName,
			Email:    w.account.Email,
			Password: w.account.Password,
		},
		Organization: authsdk.SignupOrganization{
			Name: w.org.Name,
			Slug: w.org.Slug,
		},
		Plan: w.plan,
	}
	w.mu.Unlock()

	resp, err := w.client.Signup(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		w.errMsg = msgSignupFailed
		return
	}

	w.result = resp
	w.stage = StageDone
}
