package live

import (
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="reactor-root">{{.Body}}</div>
<script>{{.Script}}</script>
</body>
</html>
`))

type pageData struct {
	Title  string
	Body   template.HTML
	Script template.JS
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var body string
	if err := s.Do(r.Context(), func() { body = s.tree.HTML() }); err != nil {
		http.Error(w, "renderer unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:  s.title,
		Body:   template.HTML(body),
		Script: template.JS(clientScript),
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

// clientScript mirrors the host tree in the page. Node 1 is the container.
const clientScript = `
(function() {
    'use strict';

    var root = document.getElementById('reactor-root');
    var nodes = {};
    var ws = null;

    function eventName(key) {
        return key.charAt(2).toLowerCase() + key.slice(3);
    }

    function isEventKey(key) {
        return key.length > 2 && key.slice(0, 2) === 'on' && key.charAt(2) !== key.charAt(2).toLowerCase();
    }

    function bind(el, id, name) {
        el.__reactor = el.__reactor || {};
        if (!(name in el.__reactor)) {
            el.addEventListener(name, function(e) {
                if (!el.__reactor[name]) return;
                var args = [];
                if (name === 'input' || name === 'change') args.push(el.value);
                if (name === 'submit') e.preventDefault();
                ws.send(JSON.stringify({node: id, event: name, args: args}));
            });
        }
        el.__reactor[name] = true;
    }

    function apply(op) {
        var n = nodes[op.node];
        switch (op.op) {
        case 'createElement':
            nodes[op.node] = document.createElement(op.tag);
            break;
        case 'createText':
            nodes[op.node] = document.createTextNode(op.text || '');
            break;
        case 'setText':
            if (n.nodeType === 3) n.data = op.text || '';
            else n.textContent = op.text || '';
            break;
        case 'insert':
            nodes[op.parent].insertBefore(n, op.anchor ? nodes[op.anchor] : null);
            break;
        case 'patchProp':
            if (isEventKey(op.key)) {
                if (op.handler) bind(n, op.node, eventName(op.key));
                else if (n.__reactor) n.__reactor[eventName(op.key)] = false;
            } else if (op.value === undefined || op.value === false) {
                n.removeAttribute(op.key);
            } else if (op.value === true) {
                n.setAttribute(op.key, '');
            } else {
                n.setAttribute(op.key, op.value);
            }
            break;
        case 'remove':
            if (n && n.parentNode) n.parentNode.removeChild(n);
            delete nodes[op.node];
            break;
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onmessage = function(e) {
            var msg = JSON.parse(e.data);
            if (msg.type === 'init') {
                root.textContent = '';
                nodes = {1: root};
            }
            if (msg.type === 'error') {
                console.error('[reactor]', msg.error);
                return;
            }
            (msg.ops || []).forEach(apply);
        };

        ws.onclose = function() {
            setTimeout(connect, 1000);
        };
    }

    connect();
})();
`
