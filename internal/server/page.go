package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"aedash/internal/window"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AE vs spot price</title>
<style>
body { font-family: sans-serif; margin: 1.5rem; }
form { display: flex; gap: 1rem; align-items: center; margin-bottom: 1rem; }
.bounds { color: #555; font-size: 0.9rem; }
.error { color: #b00020; }
img { max-width: 100%; }
</style>
</head>
<body>
<h1>Activation energy vs spot price</h1>
<form method="get" action="/">
  <label>Date
    <select name="date">
    {{range .Dates}}<option value="{{.}}"{{if eq . $.Date}} selected{{end}}>{{.}}</option>
    {{end}}</select>
  </label>
  <label>Days
    <input type="range" name="days" min="{{.MinDays}}" max="{{.MaxDays}}" value="{{.Days}}" oninput="this.nextElementSibling.value=this.value">
    <output>{{.Days}}</output>
  </label>
  <label><input type="checkbox" name="clamp"{{if .Clamp}} checked{{end}}> Clamp axis to [{{.ClampMin}}, {{.ClampMax}}]</label>
  <button type="submit">Show</button>
</form>
{{if .Error}}
<p class="error">{{.Error}}</p>
{{else}}
<p class="bounds">Start: {{.StartText}} ({{.StartMillis}} ms) &middot; End: {{.EndText}} ({{.EndMillis}} ms)</p>
<img src="{{.ChartURL}}" alt="AE and spot price chart">
<p><a href="{{.DatasetURL}}">dataset (JSON)</a></p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Dates       []string
	Date        string
	Days        int
	MinDays     int
	MaxDays     int
	Clamp       bool
	ClampMin    float64
	ClampMax    float64
	StartText   string
	EndText     string
	StartMillis int64
	EndMillis   int64
	ChartURL    template.URL
	DatasetURL  template.URL
	Error       string
}

// handlePage renders the picker and echoes the resolved bounds. The chart itself is a
// separate pass served by /chart.png.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	loc := s.runner.Location()
	data := pageData{
		Dates:    window.RecentDates(s.now(), window.MaxDays, loc),
		Days:     s.opts.DefaultDays,
		MinDays:  window.MinDays,
		MaxDays:  window.MaxDays,
		ClampMin: s.opts.Chart.ClampMin,
		ClampMax: s.opts.Chart.ClampMax,
	}
	status := http.StatusOK

	req, err := s.request(r)
	if err == nil {
		if req.Date == "" {
			req.Date = window.Today(s.now(), loc)
		}
		data.Date, data.Days, data.Clamp = req.Date, req.Days, req.ClampAxis

		tw, resolveErr := window.Resolve(req.Date, req.Days, loc)
		if resolveErr == nil {
			data.StartText, data.EndText = tw.StartText(), tw.EndText()
			data.StartMillis, data.EndMillis = tw.StartMillis(), tw.EndMillis()
			query := url.Values{}
			query.Set("date", req.Date)
			query.Set("days", strconv.Itoa(req.Days))
			query.Set("clamp", strconv.FormatBool(req.ClampAxis))
			data.ChartURL = template.URL("/chart.png?" + query.Encode())
			data.DatasetURL = template.URL("/api/dataset?" + query.Encode())
		}
		err = resolveErr
	}
	if err != nil {
		status = statusFor(err)
		data.Error = err.Error()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("failed to render page")
	}
}
