package handlers

import (
	"fmt"
	"net/http"
)

type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

func (h *DocsHandler) ServePrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>HabitPilot Privacy Policy</title></head>
<body>
<h1>Privacy Policy</h1>
<p>HabitPilot stores your account profile, your habits, and their completion
history so the app can show streaks and progress. Habit data is visible only
to you. Prompts sent to the AI coach are forwarded to the model provider and
are not stored by HabitPilot.</p>
<p>You can delete your account and all associated data at any time from the
app; deletion is immediate and permanent.</p>
</body>
</html>
`)
}

func (h *DocsHandler) ServeTermsOfServices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>HabitPilot Terms of Service</title></head>
<body>
<h1>Terms of Service</h1>
<p>HabitPilot is provided as-is, without warranty. Accounts are personal and
non-transferable. AI-generated insights are motivational suggestions, not
professional advice.</p>
</body>
</html>
`)
}
