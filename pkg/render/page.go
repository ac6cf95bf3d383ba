package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/contactform/pkg/vdom"
)

// DefaultMountID is the id of the element the thin client patches.
const DefaultMountID = "app"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode mounted inside the page.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Styles contains inline CSS blocks.
	Styles []string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// MountID is the id of the wrapper around Body.
	// Defaults to DefaultMountID.
	MountID string

	// LivePath is the WebSocket endpoint for the thin client.
	// When empty no client script is injected and the page works as a
	// plain HTML form.
	LivePath string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	mountID := page.MountID
	if mountID == "" {
		mountID = DefaultMountID
	}

	var script *vdom.VNode
	if page.LivePath != "" {
		script = vdom.Script(vdom.Raw(clientScriptFor(mountID, page.LivePath)))
	}
	doc := vdom.Html(vdom.Lang(lang),
		pageHead(page),
		vdom.Body(
			vdom.Div(vdom.ID(mountID), page.Body),
			script,
		),
	)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// pageHead builds the document head.
func pageHead(page PageData) *vdom.VNode {
	head := vdom.Head(
		vdom.Meta(vdom.Charset("utf-8")),
		vdom.Meta(vdom.Name("viewport"), vdom.Content("width=device-width, initial-scale=1")),
		vdom.If(page.Title != "", vdom.Title(vdom.Text(page.Title))),
	)
	for _, css := range page.Styles {
		// </style> inside user CSS would end the element early
		css = strings.ReplaceAll(css, "</style", `<\/style`)
		head.Children = append(head.Children, vdom.Style(vdom.Raw(css)))
	}
	return head
}

// clientScript forwards input, blur and submit events from elements carrying
// data-on-* markers and swaps the mount point's HTML on each render message.
// The focused control keeps its caret and its local value so that replies
// racing with fast typing do not overwrite keystrokes.
const clientScript = `(function(){
var mount=document.getElementById(%q);
if(!mount||!window.WebSocket){return;}
var proto=location.protocol==="https:"?"wss:":"ws:";
var ws=new WebSocket(proto+"//"+location.host+%q);
function send(el,ev,val){
if(ws.readyState!==1){return false;}
ws.send(JSON.stringify({hid:el.getAttribute("data-hid")||"",event:ev,value:val||""}));
return true;
}
mount.addEventListener("input",function(e){var el=e.target;if(el.hasAttribute("data-on-input")){send(el,"input",el.value);}});
mount.addEventListener("change",function(e){var el=e.target;if(el.hasAttribute("data-on-change")){send(el,"change",el.value);}});
mount.addEventListener("focusout",function(e){var el=e.target;if(el.hasAttribute("data-on-blur")){send(el,"blur",el.value);}});
mount.addEventListener("submit",function(e){var el=e.target;if(el.hasAttribute("data-on-submit")&&send(el,"submit","")){e.preventDefault();}});
ws.onmessage=function(m){
var msg=JSON.parse(m.data);
if(msg.type!=="render"){return;}
var a=document.activeElement,id=a&&a.id,v=a&&a.value,s=a&&a.selectionStart;
mount.innerHTML=msg.html;
if(id){var n=document.getElementById(id);if(n){if(v!==undefined){n.value=v;}n.focus();try{n.setSelectionRange(s,s);}catch(_){}}}
};
})();`

// clientScriptFor fills in the mount id and live path.
func clientScriptFor(mountID, livePath string) string {
	js := fmt.Sprintf(clientScript, mountID, livePath)
	return strings.ReplaceAll(js, "</script", `<\/script`)
}
