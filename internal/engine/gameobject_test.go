package engine

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestNewGameObject(t *testing.T) {
	obj := NewGameObject("Ball")

	if obj.Name != "Ball" {
		t.Errorf("Expected name 'Ball', got '%s'", obj.Name)
	}

	if obj.UID == 0 {
		t.Error("UID should not be 0")
	}

	if !obj.Active {
		t.Error("New GameObject should be active")
	}

	if obj.Transform.Rotation != rl.QuaternionIdentity() {
		t.Errorf("Expected identity rotation, got %v", obj.Transform.Rotation)
	}

	if obj.Transform.Scale != (rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Expected unit scale, got %v", obj.Transform.Scale)
	}
}

func TestGameObjectUniqueUIDs(t *testing.T) {
	obj1 := NewGameObject("First")
	obj2 := NewGameObject("Second")
	obj3 := NewGameObject("Third")

	if obj1.UID == obj2.UID || obj2.UID == obj3.UID || obj1.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
}

func TestGameObjectHasTag(t *testing.T) {
	obj := NewGameObject("Test")
	obj.Tags = []string{"ball", "kickable"}

	if !obj.HasTag("ball") {
		t.Error("HasTag should return true for existing tag")
	}

	if obj.HasTag("static") {
		t.Error("HasTag should return false for non-existent tag")
	}

	obj2 := NewGameObject("Test2")
	if obj2.HasTag("anything") {
		t.Error("HasTag should return false when Tags is nil/empty")
	}
}

func TestGameObjectForward(t *testing.T) {
	obj := NewGameObject("Camera")

	fwd := obj.Forward()
	if fwd != (rl.Vector3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("Identity forward should be +Z, got %v", fwd)
	}

	// 90 degrees about Y turns +Z into +X
	obj.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{X: 0, Y: 1, Z: 0}, math.Pi/2)
	fwd = obj.Forward()
	if math.Abs(float64(fwd.X-1)) > 1e-5 || math.Abs(float64(fwd.Z)) > 1e-5 {
		t.Errorf("Expected forward ~(1,0,0), got %v", fwd)
	}
}
