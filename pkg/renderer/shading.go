package renderer

import (
	"math"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// rayEpsilon is how far secondary rays step off the surface they start on
const rayEpsilon = 1e-4

// maxResamples bounds the retries of a distributed ray that leaves the
// side of the surface its undistributed ray is on
const maxResamples = 16

// traceRay returns the colour seen along ray. depth is the remaining number
// of reflection/refraction bounces.
func (rt *Raytracer) traceRay(ray core.Ray, depth int, sampler core.Sampler) core.Color {
	hit := rt.scene.Nearest(ray)
	if !hit.Hit() || hit.Material == nil {
		return rt.config.Background
	}

	props := hit.Material.PropertiesAt(hit.Point)
	c := props.Ambient

	for _, light := range rt.scene.Lights {
		if light.Enabled {
			c = c.Add(rt.shadeLight(ray, hit, props, light, sampler))
		}
	}

	if rt.preview || depth <= 0 {
		return c
	}

	if props.Reflectance > 0 {
		reflected := ray.Reflect(hit.Point, hit.Normal).ShiftOrigin(rayEpsilon)
		c = c.Add(rt.traceDistributed(reflected, hit.Normal, props.ReflectionDistribution,
			rt.config.ReflectionDistribution, depth, sampler).Multiply(props.Reflectance))
	}

	if props.Transparency > 0 {
		out := hit.Kind == geometry.Exit
		refracted := ray.Refract(hit.Point, hit.Normal, props.RefractionIndex, out)
		if refracted.IsValid() {
			refracted = refracted.ShiftOrigin(rayEpsilon)
			c = c.Add(rt.traceDistributed(refracted, hit.Normal, props.RefractionDistribution,
				rt.config.RefractionDistribution, depth, sampler).Multiply(props.Transparency))
		}
	}

	return c
}

// shadeLight returns the Lambert and Phong contribution of one light,
// averaged over its shadow rays
func (rt *Raytracer) shadeLight(ray core.Ray, hit geometry.Intersection, props material.Properties, light *lights.Light, sampler core.Sampler) core.Color {
	samples := 1
	if !rt.preview && light.Kind == lights.KindSphere && rt.config.ShadowDistribution > 1 {
		samples = rt.config.ShadowDistribution
	}

	var sum core.Color
	for i := 0; i < samples; i++ {
		shadow := light.ShadowRay(hit.Point, samples > 1, sampler)
		toLight := shadow.Ray.Direction
		if toLight.Dot(hit.Normal) < 0 {
			continue
		}

		blocker := rt.scene.Nearest(shadow.Ray.ShiftOrigin(rayEpsilon))
		if blocker.Hit() && blocker.T < shadow.Distance-rayEpsilon {
			continue
		}

		sum = sum.Add(light.Color.MultiplyColor(props.Diffuse).Multiply(math.Abs(toLight.Dot(hit.Normal))))

		if props.Shininess != 0 {
			mirrored := reflect(toLight.Negate(), hit.Normal)
			if specular := ray.Direction.Negate().Dot(mirrored); specular > 0 {
				sum = sum.Add(light.Color.MultiplyColor(props.Specular).Multiply(math.Pow(specular, float64(props.Shininess))))
			}
		}
	}
	return sum.Divide(float64(samples))
}

// traceDistributed traces ray once, or count times jittered inside a cone of
// spread degrees, and averages the result. Jittered rays that cross to the
// other side of the surface are drawn again.
func (rt *Raytracer) traceDistributed(ray core.Ray, normal core.Vec3, spread float64, count, depth int, sampler core.Sampler) core.Color {
	if count <= 1 || spread == 0 {
		return rt.traceRay(ray, depth-1, sampler)
	}

	side := ray.Direction.Dot(normal)
	var sum core.Color
	for i := 0; i < count; i++ {
		jittered := ray.Distribute(spread, sampler)
		for retry := 0; retry < maxResamples && jittered.Direction.Dot(normal)*side < 0; retry++ {
			jittered = ray.Distribute(spread, sampler)
		}
		sum = sum.Add(rt.traceRay(jittered, depth-1, sampler))
	}
	return sum.Divide(float64(count))
}

// reflect mirrors v about the unit normal n
func reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
