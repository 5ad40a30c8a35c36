package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// sequenceSampler replays a fixed list of values, cycling when exhausted
type sequenceSampler struct {
	values []float64
	index  int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}

// downwardUnitVector makes core.RandomUnitVector return (0, -1, 0):
// the rejection sampler maps 0.5 -> 0 and 0.25 -> -0.5
func downwardUnitVector() *sequenceSampler {
	return &sequenceSampler{values: []float64{0.5, 0.25, 0.5}}
}

func TestLambertian_Scatter(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.5, 0.5)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	hit := &HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
		Material:  lambertian,
	}
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	for i := 0; i < 1000; i++ {
		result, scattered := lambertian.Scatter(rayIn, hit, sampler)
		if !scattered {
			t.Fatal("Lambertian should always scatter")
		}
		if !result.Attenuation.Equals(albedo) {
			t.Fatalf("Expected attenuation %v, got %v", albedo, result.Attenuation)
		}
		if !result.Scattered.Origin.Equals(hit.Point) {
			t.Fatalf("Scattered ray should start at hit point, got %v", result.Scattered.Origin)
		}
		// normal + unit vector never points below the tangent plane
		if result.Scattered.Direction.Dot(hit.Normal) < -1e-12 {
			t.Fatalf("Scattered direction %v points into the surface", result.Scattered.Direction)
		}
	}
}

func TestLambertian_DegenerateDirection(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.8, 0.1, 0.1))
	hit := &HitRecord{
		Point:  core.NewVec3(1, 2, 3),
		Normal: core.NewVec3(0, 1, 0),
	}
	rayIn := core.NewRay(core.NewVec3(1, 3, 3), core.NewVec3(0, -1, 0))

	result, scattered := lambertian.Scatter(rayIn, hit, downwardUnitVector())
	if !scattered {
		t.Fatal("Lambertian should always scatter")
	}
	if !result.Scattered.Direction.Equals(hit.Normal) {
		t.Errorf("Degenerate direction should fall back to the normal, got %v", result.Scattered.Direction)
	}
}

func TestNewMetal_FuzzClamp(t *testing.T) {
	tests := []struct {
		name         string
		inputFuzz    float64
		expectedFuzz float64
	}{
		{"Valid fuzz 0.0", 0.0, 0.0},
		{"Valid fuzz 0.5", 0.5, 0.5},
		{"Valid fuzz 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
		{"Clamp large positive", 10.0, 1.0},
		{"Clamp large negative", -10.0, 0.0},
	}

	albedo := core.NewVec3(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzz)
			if metal.Fuzz != tt.expectedFuzz {
				t.Errorf("Expected fuzz %f, got %f", tt.expectedFuzz, metal.Fuzz)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Ray hitting surface at 45 degrees
	rayIn := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	hit := &HitRecord{
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 1, 0),
	}

	result, scattered := metal.Scatter(rayIn, hit, sampler)
	if !scattered {
		t.Fatal("Metal should scatter")
	}

	expected := core.NewVec3(0, 1, -1).Normalize()
	if result.Scattered.Direction.Subtract(expected).Length() > 1e-10 {
		t.Errorf("Perfect reflection failed: expected %v, got %v", expected, result.Scattered.Direction)
	}
	if !result.Attenuation.Equals(albedo) {
		t.Errorf("Attenuation should equal albedo: expected %v, got %v", albedo, result.Attenuation)
	}
}

func TestMetal_FuzzyReflectionStaysNearMirror(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.3)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0)}
	mirror := core.NewVec3(0, 1, 0)

	for i := 0; i < 1000; i++ {
		result, _ := metal.Scatter(rayIn, hit, sampler)
		offset := result.Scattered.Direction.Subtract(mirror).Length()
		if offset > 0.3+1e-9 {
			t.Fatalf("Fuzzed direction deviates by %f, expected at most 0.3", offset)
		}
	}
}

// A grazing ray whose fuzzed reflection is forced below the surface
func grazingMetalScatter(policy MetalPolicy) (ScatterResult, bool) {
	metal := NewMetalWithPolicy(core.NewVec3(0.7, 0.6, 0.5), 1.0, policy)
	rayIn := core.NewRay(core.NewVec3(-1, 0.01, 0), core.NewVec3(1, -0.01, 0))
	hit := &HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
	}
	return metal.Scatter(rayIn, hit, downwardUnitVector())
}

func TestMetal_AlwaysScatterPolicy_ReportsBelowSurfaceScatter(t *testing.T) {
	result, scattered := grazingMetalScatter(MetalAlwaysScatter)
	if !scattered {
		t.Fatal("MetalAlwaysScatter should report a scatter even below the surface")
	}
	if result.Scattered.Direction.Y >= 0 {
		t.Fatalf("Test setup should produce a below-surface direction, got %v", result.Scattered.Direction)
	}
}

func TestMetal_RejectBelowSurfacePolicy_AbsorbsBelowSurfaceScatter(t *testing.T) {
	_, scattered := grazingMetalScatter(MetalRejectBelowSurface)
	if scattered {
		t.Fatal("MetalRejectBelowSurface should absorb a below-surface reflection")
	}

	// Above-surface reflections are still reported
	metal := NewMetalWithPolicy(core.NewVec3(0.7, 0.6, 0.5), 0, MetalRejectBelowSurface)
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0)}
	if _, ok := metal.Scatter(rayIn, hit, downwardUnitVector()); !ok {
		t.Error("Mirror reflection above the surface should scatter")
	}
}

func TestDielectric_AttenuationIsWhite(t *testing.T) {
	glass := NewDielectric(1.5)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, -1, 0))
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0), FrontFace: true}

	for i := 0; i < 100; i++ {
		result, scattered := glass.Scatter(rayIn, hit, sampler)
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if !result.Attenuation.Equals(core.NewVec3(1, 1, 1)) {
			t.Fatalf("Expected white attenuation, got %v", result.Attenuation)
		}
	}
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Exiting glass at a shallow angle: 1.5 * sin(theta) > 1
	direction := core.NewVec3(1, -0.2, 0)
	rayIn := core.NewRay(core.NewVec3(-1, 0.2, 0), direction)
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0), FrontFace: false}

	// A draw of 0.999 would refract if refraction were possible
	sampler := &sequenceSampler{values: []float64{0.999}}
	result, _ := glass.Scatter(rayIn, hit, sampler)

	expected := core.Reflect(direction.Normalize(), hit.Normal)
	if result.Scattered.Direction.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected total internal reflection %v, got %v", expected, result.Scattered.Direction)
	}
}

func TestDielectric_SchlickChoice(t *testing.T) {
	glass := NewDielectric(1.5)
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0), FrontFace: true}

	// Normal incidence reflectance is r0 = 0.04
	tests := []struct {
		name     string
		draw     float64
		expected core.Vec3
	}{
		{"draw above reflectance refracts", 0.5, core.NewVec3(0, -1, 0)},
		{"draw below reflectance reflects", 0.01, core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := glass.Scatter(rayIn, hit, &sequenceSampler{values: []float64{tt.draw}})
			if result.Scattered.Direction.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected direction %v, got %v", tt.expected, result.Scattered.Direction)
			}
		})
	}
}

func TestReflectance(t *testing.T) {
	ratio := 1.0 / 1.5
	r0 := math.Pow((1-ratio)/(1+ratio), 2)

	if got := Reflectance(1, ratio); math.Abs(got-r0) > 1e-12 {
		t.Errorf("Reflectance at normal incidence should be r0=%f, got %f", r0, got)
	}
	if got := Reflectance(0, ratio); math.Abs(got-1) > 1e-12 {
		t.Errorf("Reflectance at grazing incidence should be 1, got %f", got)
	}
	if Reflectance(0.5, ratio) <= Reflectance(0.9, ratio) {
		t.Error("Reflectance should increase toward grazing angles")
	}
}

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 0, 1)

	var front HitRecord
	front.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), outward)
	if !front.FrontFace || !front.Normal.Equals(outward) {
		t.Errorf("Expected front face with outward normal, got %t %v", front.FrontFace, front.Normal)
	}

	var back HitRecord
	back.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), outward)
	if back.FrontFace || !back.Normal.Equals(outward.Negate()) {
		t.Errorf("Expected back face with flipped normal, got %t %v", back.FrontFace, back.Normal)
	}
}

func TestMaterial_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown material kind")
		}
	}()
	m := &Material{Kind: Kind(99)}
	m.Scatter(core.Ray{}, &HitRecord{}, &sequenceSampler{values: []float64{0.5}})
}
