package api

import (
	"net/http"
)

func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(frontendHTML))
}

const frontendHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Clipboard Saver</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 640px; margin: 2rem auto; color: #222; }
        .row { margin: 0.75rem 0; }
        .label { color: #666; display: inline-block; width: 7rem; }
        button { padding: 0.5rem 1.25rem; margin-right: 0.5rem; font-size: 1rem; }
        #preview { font-family: monospace; background: #f4f4f4; padding: 0.5rem; white-space: pre-wrap; }
        #error { color: #b00020; }
        ul { padding-left: 1rem; font-family: monospace; }
    </style>
</head>
<body>
    <h1>Clipboard Saver</h1>
    <div class="row"><span class="label">Status</span><strong id="status">-</strong></div>
    <div class="row"><span class="label">Destination</span><span id="destination">-</span></div>
    <div class="row"><span class="label">Saved</span><span id="saves">0</span></div>
    <div class="row">
        <button id="start">Start Monitoring</button>
        <button id="stop">Stop Monitoring</button>
    </div>
    <div class="row"><span class="label">Last saved</span></div>
    <div id="preview"></div>
    <div class="row" id="error"></div>
    <h2>Recent</h2>
    <ul id="history"></ul>
    <script>
        async function refresh() {
            const s = await (await fetch('/api/v1/status')).json();
            document.getElementById('status').textContent = s.status;
            document.getElementById('destination').textContent = s.destination;
            document.getElementById('saves').textContent = s.saves;
            document.getElementById('start').disabled = s.running;
            document.getElementById('stop').disabled = !s.running;
            document.getElementById('preview').textContent = s.last_saved ? s.last_saved.preview : '';
            document.getElementById('error').textContent = s.last_error ? 'Error: ' + s.last_error.message : '';

            const h = await (await fetch('/api/v1/history?n=10')).json();
            const list = document.getElementById('history');
            list.innerHTML = '';
            for (const e of h.entries.reverse()) {
                const li = document.createElement('li');
                li.textContent = '[' + e.timestamp + '] ' + e.text.slice(0, 80);
                list.appendChild(li);
            }
        }
        document.getElementById('start').onclick = () => fetch('/api/v1/watcher/start', {method: 'POST'}).then(refresh);
        document.getElementById('stop').onclick = () => fetch('/api/v1/watcher/stop', {method: 'POST'}).then(refresh);
        refresh();
        setInterval(refresh, 1000);
    </script>
</body>
</html>
`
