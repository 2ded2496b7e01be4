// Package templates renders the HTML fragments served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// PageData configures the upload page.
type PageData struct {
	Region      string
	MaxFileSize int64
	Persistence bool // offer the "save to database" option
}

// UploadPage renders the single-page upload form. The form posts to
// /api/normalize and shows the JSON result inline.
func UploadPage(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, `<main>
<h1>Contact normalizer</h1>
<p class="hint">Phone numbers are parsed for region <strong>%s</strong>. Files up to %s.</p>
<form id="upload" method="post" action="/api/normalize?report=true" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,text/csv" required>
`, templ.EscapeString(data.Region), templ.EscapeString(formatBytes(data.MaxFileSize)))
		if err != nil {
			return err
		}

		if data.Persistence {
			if _, err := io.WriteString(w, `<label><input type="checkbox" name="persist" value="true"> Save to database</label>
`); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, `<button type="submit">Normalize</button>
</form>
<div id="error"></div>
<pre id="result"></pre>
</main>
`+pageScript+`</body>
</html>
`)
		return err
	})
}

// ErrorAlert renders a coded error message with a suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><p><strong>%s</strong></p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p>%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Contact normalizer</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; }
.hint { color: #555; }
.alert { border: 1px solid #c00; background: #fee; padding: 0.5rem 1rem; margin: 1rem 0; }
.code { font-size: 0.8rem; color: #777; }
pre { background: #f5f5f5; padding: 1rem; overflow: auto; max-height: 40rem; }
</style>
</head>
<body>
`

// pageScript submits the form with fetch and appends the persist flag to the query string.
const pageScript = `<script>
document.getElementById("upload").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const form = ev.target;
  const body = new FormData(form);
  let url = form.action;
  if (body.get("persist") === "true") { url += "&persist=true"; }
  body.delete("persist");
  const errBox = document.getElementById("error");
  const out = document.getElementById("result");
  errBox.textContent = "";
  out.textContent = "";
  const resp = await fetch(url, { method: "POST", body: body, headers: { "Accept": "application/json" } });
  const text = await resp.text();
  let payload;
  try { payload = JSON.parse(text); } catch (e) { payload = null; }
  if (!resp.ok) {
    errBox.textContent = payload ? payload.message + " (" + payload.code + "). " + (payload.action || "") : text;
    return;
  }
  out.textContent = JSON.stringify(payload, null, 2);
});
</script>
`
