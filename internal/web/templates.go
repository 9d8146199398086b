package web

import (
	"html/template"
	"net/http"

	"github.com/user/wolbook/internal/util"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type dashboardRow struct {
	Number int
	hostView
}

// Dashboard serves a host table with wake buttons.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	hosts := h.registry.List()
	rows := make([]dashboardRow, len(hosts))
	for i, rec := range hosts {
		rows[i] = dashboardRow{Number: i + 1, hostView: newHostView(i, rec)}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, rows); err != nil {
		util.Error("Failed to render dashboard: %v", err)
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>wolbook</title>
    <style>
        body { font-family: monospace; background: #0a0f0a; color: #00cc33; padding: 2rem; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border-bottom: 1px solid #1a4a1a; padding: 0.4rem 0.8rem; text-align: left; }
        th { color: #00ff41; }
        .bad { color: #ff3333; }
        button { background: #0d1a0d; color: #00ff41; border: 1px solid #1a4a1a; cursor: pointer; }
        #msg { margin-top: 1rem; }
    </style>
</head>
<body>
    <h1>wolbook</h1>
    <button onclick="sync()">Sync DDNS</button>
    <table>
        <tr><th>#</th><th>Name</th><th>IP</th><th>DDNS</th><th>MAC</th><th>Port</th><th></th></tr>
        {{range .}}
        <tr{{if not .Wakeable}} class="bad"{{end}}>
            <td>{{.Number}}</td>
            <td>{{.Name}}</td>
            <td>{{.Address}}</td>
            <td>{{.DynamicName}}</td>
            <td>{{.HardwareAddress}}</td>
            <td>{{.Port}}</td>
            <td>{{if .Wakeable}}<button onclick="wake({{.Name}}, {{.Index}})">Wake</button>{{else}}unwakeable{{end}}</td>
        </tr>
        {{else}}
        <tr><td colspan="7">No hosts registered.</td></tr>
        {{end}}
    </table>
    <div id="msg"></div>
    <script>
        async function call(method, url) {
            const res = await fetch(url, { method });
            const body = await res.json();
            if (!res.ok) throw new Error(body.error);
            return body;
        }
        async function wake(name, index) {
            if (!confirm("Wake " + name + "?")) return;
            try {
                await call("POST", "/api/hosts/" + index + "/wake");
                document.getElementById("msg").textContent = "Wake up signal sent to " + name;
            } catch (e) {
                document.getElementById("msg").textContent = e.message;
            }
        }
        async function sync() {
            const body = await call("POST", "/api/sync");
            if (body.failures.length) {
                alert("Unresolved: " + body.failures.map(f => f.ddns).join(", "));
            }
            location.reload();
        }
    </script>
</body>
</html>
`
