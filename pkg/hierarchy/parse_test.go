package hierarchy

import (
	"testing"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

const sampleHierarchy = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.app" bounds="[0,0][1080,1920]" clickable="false" enabled="true">
    <node index="0" text="Login" resource-id="com.app:id/login_btn" class="android.widget.Button" bounds="[100,200][300,280]" clickable="true" enabled="true"/>
    <node index="1" text="Sign Up" resource-id="com.app:id/signup_btn" class="android.widget.Button" bounds="[100,300][300,380]" clickable="true" enabled="true"/>
    <node index="2" text="" resource-id="com.app:id/container" class="android.widget.LinearLayout" bounds="[0,400][1080,800]" clickable="false" enabled="true">
      <node index="0" text="Username" resource-id="com.app:id/label" class="android.widget.TextView" bounds="[50,420][200,460]" clickable="false" enabled="true"/>
      <node index="1" text="" resource-id="com.app:id/input" class="android.widget.EditText" bounds="[50,470][500,530]" clickable="true" enabled="true" focused="true"/>
    </node>
  </node>
</hierarchy>`

func TestParse(t *testing.T) {
	snap, err := ParseString(sampleHierarchy)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(snap.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(snap.Windows))
	}

	root := snap.Windows[0].Root
	if root.ClassName != "android.widget.FrameLayout" {
		t.Errorf("got root class %q", root.ClassName)
	}
	if root.ChildCount() != 3 {
		t.Fatalf("expected 3 children, got %d", root.ChildCount())
	}

	login := root.Children[0]
	if login.Text != "Login" || login.ResourceID != "com.app:id/login_btn" {
		t.Errorf("unexpected first child: %+v", login)
	}
	if !login.Clickable {
		t.Error("expected Login to be clickable")
	}
	if login.Parent() != core.Node(root) {
		t.Error("expected parent link to root")
	}

	input := root.Children[2].Children[1]
	if !input.Focused {
		t.Error("expected input to be focused")
	}
}

func TestParseAppiumClassTags(t *testing.T) {
	src := `<hierarchy>
  <android.widget.FrameLayout bounds="[0,0][100,100]">
    <android.widget.Button text="OK" bounds="[0,0][50,50]"/>
  </android.widget.FrameLayout>
</hierarchy>`

	snap, err := ParseString(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := snap.Windows[0].Root
	if root.ClassName != "android.widget.FrameLayout" {
		t.Errorf("got class %q from element tag", root.ClassName)
	}
	if root.Children[0].Text != "OK" {
		t.Errorf("got child text %q", root.Children[0].Text)
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := ParseString("not xml"); err == nil {
		t.Error("expected error for invalid XML")
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		input    string
		expected core.Bounds
	}{
		{"[0,0][100,200]", core.Bounds{X: 0, Y: 0, Width: 100, Height: 200}},
		{"[50,100][150,300]", core.Bounds{X: 50, Y: 100, Width: 100, Height: 200}},
		{"invalid", core.Bounds{}},
		{"[0,0]", core.Bounds{}},
	}

	for _, tt := range tests {
		got := parseBounds(tt.input)
		if got != tt.expected {
			t.Errorf("parseBounds(%q) = %+v, want %+v", tt.input, got, tt.expected)
		}
	}
}

func TestElementAttributes(t *testing.T) {
	e := NewElement(map[string]string{
		core.AttrText:  "Login",
		core.AttrClass: "android.widget.Button",
		"bounds":       "[10,10][30,20]",
		"enabled":      "false",
	})

	if v, ok := e.Attribute(core.AttrText); !ok || v != "Login" {
		t.Errorf("text attribute = %q, %v", v, ok)
	}
	if v, _ := e.Attribute(core.AttrEnabled); v != "false" {
		t.Errorf("enabled attribute = %q, want false", v)
	}
	if _, ok := e.Attribute("no-such-attr"); ok {
		t.Error("unknown attribute should report absent")
	}
	if e.Bounds.Width != 20 || e.Bounds.Height != 10 {
		t.Errorf("bounds = %+v", e.Bounds)
	}
}

func TestNilChildSlots(t *testing.T) {
	root := NewElement(map[string]string{core.AttrText: "root"})
	a := NewElement(map[string]string{core.AttrText: "a"})
	b := NewElement(map[string]string{core.AttrText: "b"})
	root.AddChild(a).AddChild(nil).AddChild(b)

	if root.ChildCount() != 3 {
		t.Fatalf("expected 3 child slots, got %d", root.ChildCount())
	}
	if root.ChildAt(1) != nil {
		t.Error("expected nil for the inconsistent slot")
	}
	if root.ChildAt(2) == nil {
		t.Error("expected element after the nil slot")
	}
	if root.ChildAt(7) != nil {
		t.Error("expected nil for an out-of-range index")
	}
}

func TestSnapshotRoots(t *testing.T) {
	mk := func(title string, active bool) *Window {
		return &Window{
			Title:  title,
			Active: active,
			Root:   NewElement(map[string]string{core.AttrText: title}),
		}
	}
	snap := NewSnapshot(mk("Settings", false), mk("Home", true), mk("Dialog", false))

	// Active window first.
	roots := snap.Roots("")
	if len(roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(roots))
	}
	if roots[0].WindowTitle() != "Home" {
		t.Errorf("expected active window first, got %q", roots[0].WindowTitle())
	}

	// Hint selects titled windows only, case-insensitive.
	roots = snap.Roots("settings")
	if len(roots) != 1 || roots[0].WindowTitle() != "Settings" {
		t.Errorf("hinted roots = %v", roots)
	}

	if len(snap.Roots("no-such-window")) != 0 {
		t.Error("expected no roots for an unmatched hint")
	}
}

func TestWalkDepths(t *testing.T) {
	root := NewElement(map[string]string{core.AttrText: "root"})
	child := NewElement(map[string]string{core.AttrText: "child"})
	grand := NewElement(map[string]string{core.AttrText: "grand"})
	child.AddChild(grand)
	root.AddChild(child)
	root.AddChild(nil)

	depths := map[string]int{}
	Walk(root, func(e *Element, depth int) {
		depths[e.Text] = depth
	})

	want := map[string]int{"root": 0, "child": 1, "grand": 2}
	for k, v := range want {
		if depths[k] != v {
			t.Errorf("depth[%s] = %d, want %d", k, depths[k], v)
		}
	}
	if len(depths) != 3 {
		t.Errorf("visited %d elements, want 3 (nil slot skipped)", len(depths))
	}
}
