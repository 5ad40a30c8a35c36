package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	LookFrom      core.Vec3 `json:"lookFrom"`      // Camera position
	LookAt        core.Vec3 `json:"lookAt"`        // Point the camera is looking at
	Up            core.Vec3 `json:"up"`            // Up direction (usually (0,1,0))
	Width         int       `json:"width"`         // Image width in pixels
	AspectRatio   float64   `json:"aspectRatio"`   // Width / height ratio
	VFov          float64   `json:"vfov"`          // Vertical field of view in degrees
	DefocusAngle  float64   `json:"defocusAngle"`  // Lens cone angle in degrees (<= 0 is a pinhole)
	FocusDistance float64   `json:"focusDistance"` // Distance to the plane of perfect focus
}

// DefaultCameraConfig returns a pinhole camera at the origin looking down -z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          90,
		DefocusAngle:  0,
		FocusDistance: 1,
	}
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if override.LookFrom != zero {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.DefocusAngle != 0 {
		result.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}

// Validate reports configuration values the camera cannot work with
func (c CameraConfig) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("image width must be positive, got %d", c.Width)
	}
	if c.AspectRatio <= 0 || math.IsNaN(c.AspectRatio) || math.IsInf(c.AspectRatio, 0) {
		return fmt.Errorf("aspect ratio must be a positive number, got %g", c.AspectRatio)
	}
	if c.FocusDistance <= 0 {
		return fmt.Errorf("focus distance must be positive, got %g", c.FocusDistance)
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("vertical field of view must be in (0, 180) degrees, got %g", c.VFov)
	}
	if c.LookFrom == c.LookAt {
		return fmt.Errorf("lookFrom and lookAt must differ")
	}
	if c.Up.Cross(c.LookFrom.Subtract(c.LookAt)).NearZero() {
		return fmt.Errorf("up vector must not be parallel to the view direction")
	}
	return nil
}

// Camera generates primary rays through a thin lens.
// All derived state is computed once in NewCamera and only read afterwards.
type Camera struct {
	config       CameraConfig
	imageHeight  int
	center       core.Vec3 // Camera center (lookFrom)
	pixel00Loc   core.Vec3 // Location of pixel (0, 0)
	pixelDeltaU  core.Vec3 // Offset to the pixel to the right
	pixelDeltaV  core.Vec3 // Offset to the pixel below
	u, v, w      core.Vec3 // Camera frame basis vectors
	defocusDiskU core.Vec3 // Defocus disk horizontal radius
	defocusDiskV core.Vec3 // Defocus disk vertical radius
}

// NewCamera creates a camera with the given configuration
func NewCamera(config CameraConfig) *Camera {
	// Image height is at least one pixel
	imageHeight := int(float64(config.Width) / config.AspectRatio)
	if imageHeight < 1 {
		imageHeight = 1
	}

	center := config.LookFrom

	theta := core.DegreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * (float64(config.Width) / float64(imageHeight))

	// Orthonormal camera frame
	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(config.Width))
	pixelDeltaV := viewportV.Divide(float64(imageHeight))

	viewportUpperLeft := center.
		Subtract(w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	pixel00Loc := viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDistance * math.Tan(core.DegreesToRadians(config.DefocusAngle/2))

	return &Camera{
		config:       config,
		imageHeight:  imageHeight,
		center:       center,
		pixel00Loc:   pixel00Loc,
		pixelDeltaU:  pixelDeltaU,
		pixelDeltaV:  pixelDeltaV,
		u:            u,
		v:            v,
		w:            w,
		defocusDiskU: u.Multiply(defocusRadius),
		defocusDiskV: v.Multiply(defocusRadius),
	}
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.config.Width
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.imageHeight
}

// Center returns the camera position
func (c *Camera) Center() core.Vec3 {
	return c.center
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Basis returns the camera frame: u right, v up, w pointing backwards
func (c *Camera) Basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}

// PixelCenter returns the world-space center of pixel (i, j) on the focus plane
func (c *Camera) PixelCenter(i, j int) core.Vec3 {
	return c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
}

// GetRay generates a ray for pixel (i, j), where j counts rows from the top.
// The target is jittered inside the pixel square and the origin is sampled on
// the defocus disk when DefocusAngle > 0.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offsetU := sampler.Get1D() - 0.5
	offsetV := sampler.Get1D() - 0.5
	pixelSample := c.PixelCenter(i, j).
		Add(c.pixelDeltaU.Multiply(offsetU)).
		Add(c.pixelDeltaV.Multiply(offsetV))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// defocusDiskSample returns a random point on the camera's lens disk
func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}
