package handlers

import "net/http"

// appStylesheet is the single stylesheet of the two screens, served from the
// binary so the service deploys as one artifact.
const appStylesheet = `body { margin: 0; font-family: system-ui, sans-serif; color: #1f2430; }
.top-bar { padding: 0.75rem 1.5rem; background: #1f2430; color: #fff; }
.top-bar h1 { margin: 0; font-size: 1.25rem; }
main { max-width: 60rem; margin: 1.5rem auto; padding: 0 1rem; }
.mode-tabs button, .route-tabs button { padding: 0.5rem 1rem; border: 1px solid #ccd; background: #f4f5f8; cursor: pointer; }
.mode-tabs button.active, .route-tabs button.active { background: #2d6cdf; color: #fff; border-color: #2d6cdf; }
.mode-tabs form, .route-tabs { display: flex; gap: 0.25rem; }
.error-banner { margin: 1rem 0; padding: 0.75rem 1rem; background: #fbe9e9; border: 1px solid #d88; }
.upload-form { margin-top: 1rem; display: flex; flex-direction: column; gap: 0.75rem; max-width: 28rem; }
.upload-form input[type="text"] { padding: 0.5rem; }
.project-ref { color: #667; font-size: 0.875rem; }
.route-content { margin: 1rem 0; padding: 1rem; border: 1px solid #dde; min-height: 12rem; }
.route-content table { border-collapse: collapse; width: 100%; }
.route-content th, .route-content td { border: 1px solid #dde; padding: 0.375rem 0.5rem; text-align: left; }
.flow-loading { text-align: center; padding: 2rem; }
.spinner { width: 2rem; height: 2rem; margin: 0 auto 1rem; border: 3px solid #dde; border-top-color: #2d6cdf; border-radius: 50%; animation: spin 0.8s linear infinite; }
@keyframes spin { to { transform: rotate(360deg); } }
.flow-error { padding: 1rem; background: #fbe9e9; border: 1px solid #d88; }
.chat-log { display: flex; flex-direction: column; gap: 0.5rem; margin-bottom: 1rem; }
.chat-entry { padding: 0.5rem 0.75rem; border-radius: 0.375rem; max-width: 80%; }
.chat-entry.user { align-self: flex-end; background: #2d6cdf; color: #fff; }
.chat-entry.ai { background: #f4f5f8; }
.chat-entry.error { background: #fbe9e9; }
.chat-entry.route { max-width: 100%; }
.query-form { display: flex; gap: 0.5rem; }
.query-form input { flex: 1; padding: 0.5rem; }
`

// ServeStylesheet handles GET /static/app.css
func ServeStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(appStylesheet))
}
