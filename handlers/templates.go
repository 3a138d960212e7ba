package handlers

import (
	"html/template"

	"project-analyzer-web/models"
)

// uploadPageData feeds the upload screen template.
type uploadPageData struct {
	Mode         models.UploadMode
	URLText      string
	FileCount    int
	Submitting   bool
	ErrorMessage string
}

// resultsPageData feeds the results screen template.
type resultsPageData struct {
	SessionID     string
	RawInput      string
	Routes        []models.Route
	ActiveRoute   models.Route
	Content       template.HTML
	History       []models.ChatEntry
	QueryDisabled bool
	FlowLoading   bool
}

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "layout_head"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Project Analyzer</title>
  <link rel="stylesheet" href="/static/app.css">
</head>
<body>
<header class="top-bar"><h1>Project Analyzer</h1></header>
{{end}}

{{define "layout_foot"}}
<script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
<script>if (window.mermaid) { mermaid.initialize({ startOnLoad: true }); }</script>
<script>
(function () {
  var el = document.querySelector("[data-flow-poll]");
  if (!el) { return; }
  var url = el.getAttribute("data-flow-poll");
  var timer = setInterval(function () {
    fetch(url).then(function (resp) { return resp.json(); }).then(function (state) {
      if (!state.loading) { clearInterval(timer); window.location.reload(); }
    }).catch(function () { clearInterval(timer); });
  }, 2000);
})();
</script>
</body>
</html>
{{end}}

{{define "upload_page"}}{{template "layout_head" .}}
<main class="upload">
  <nav class="mode-tabs">
    <form method="POST" action="/upload/mode">
      <button type="submit" name="mode" value="file"{{if eq .Mode "file"}} class="active"{{end}}>Upload files</button>
      <button type="submit" name="mode" value="url"{{if eq .Mode "url"}} class="active"{{end}}>Repository URL</button>
    </form>
  </nav>

  {{if .ErrorMessage}}<div class="error-banner">{{.ErrorMessage}}</div>{{end}}

  {{if eq .Mode "file"}}
  <form method="POST" action="/analyze/files" enctype="multipart/form-data" class="upload-form">
    <input type="file" name="files" multiple{{if .Submitting}} disabled{{end}}>
    {{if .FileCount}}<p>{{.FileCount}} file(s) selected</p>{{end}}
    <button type="submit"{{if .Submitting}} disabled{{end}}>Analyze files</button>
  </form>
  {{else}}
  <form method="POST" action="/analyze/github" class="upload-form">
    <input type="text" name="github_url" placeholder="https://github.com/owner/repo" value="{{.URLText}}"{{if .Submitting}} disabled{{end}}>
    <button type="submit"{{if .Submitting}} disabled{{end}}>Analyze repository</button>
  </form>
  {{end}}
</main>
{{template "layout_foot" .}}{{end}}

{{define "results_page"}}{{template "layout_head" .}}
<main class="results">
  <p class="project-ref">{{.RawInput}}</p>

  <nav class="route-tabs">
    {{$active := .ActiveRoute}}{{$sid := .SessionID}}
    {{range .Routes}}
    <form method="POST" action="/results/{{$sid}}/route">
      <button type="submit" name="route" value="{{.}}"{{if eq . $active}} class="active"{{end}}>{{.}}</button>
    </form>
    {{end}}
  </nav>

  <section class="route-content"{{if .FlowLoading}} data-flow-poll="/results/{{.SessionID}}/flow"{{end}}>
    {{.Content}}
  </section>

  <section class="chat">
    <div class="chat-log">
      {{range .History}}
      {{if eq .Kind "user"}}<div class="chat-entry user">{{.Text}}</div>{{end}}
      {{if eq .Kind "ai"}}<div class="chat-entry ai">{{.Text}}</div>{{end}}
      {{if eq .Kind "error"}}<div class="chat-entry error">{{.Text}}</div>{{end}}
      {{if eq .Kind "route"}}<div class="chat-entry route" data-route="{{.RouteID}}">{{.HTML}}</div>{{end}}
      {{end}}
    </div>
    <form method="POST" action="/results/{{.SessionID}}/query" class="query-form">
      <input type="text" name="query" placeholder="Ask about this project…"{{if .QueryDisabled}} disabled{{end}}>
      <button type="submit"{{if .QueryDisabled}} disabled{{end}}>Ask</button>
    </form>
  </section>
</main>
{{template "layout_foot" .}}{{end}}
`))
