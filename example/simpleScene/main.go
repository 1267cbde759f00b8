package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	physics "github.com/psryland/rylogic-code-sub010"
	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/collision"
	"github.com/psryland/rylogic-code-sub010/material"
	"github.com/psryland/rylogic-code-sub010/query"
	"github.com/psryland/rylogic-code-sub010/spatial"
)

// Material IDs used by the scene
const (
	matGround material.ID = iota + 1
	matRubber
)

// SetupScene creates a static ground slab and a tilted cube above it.
func SetupScene() (*physics.World, *actor.RigidBody, *actor.RigidBody, error) {
	materials := material.NewTable()
	materials.Set(matGround, material.Material{Density: 2500, StaticFriction: 0.8, DynamicFriction: 0.6, NormalElasticity: 0.2})
	materials.Set(matRubber, material.Material{Density: 1100, StaticFriction: 1.0, DynamicFriction: 0.8, NormalElasticity: 0.9})

	world := physics.NewWorld(physics.Engine{
		Gravity:    mgl64.Vec3{0, -9.81, 0},
		Substeps:   4,
		BroadPhase: physics.NewSpatialGrid(4.0, 64),
		Materials:  materials,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	// Ground slab whose top face is y=0
	groundShape, err := actor.NewBox(mgl64.Vec3{20, 0.5, 20}, actor.WithMaterial(matGround))
	if err != nil {
		return nil, nil, nil, err
	}
	ground, err := actor.NewRigidBody(groundShape, actor.Translation(mgl64.Vec3{0, -0.5, 0}), spatial.Inertia{}, actor.BodyTypeStatic)
	if err != nil {
		return nil, nil, nil, err
	}
	world.AddBody(ground)

	half := mgl64.Vec3{1.5, 1.5, 1.5}
	cubeShape, err := actor.NewBox(half, actor.WithMaterial(matRubber))
	if err != nil {
		return nil, nil, nil, err
	}
	pose := actor.Transform{
		Position: mgl64.Vec3{-5.0, 5.0, -5.0},
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(70), mgl64.Vec3{0, 0, 1}),
	}
	mass := cubeShape.Volume() * materials.Get(matRubber).Density
	cube, err := actor.NewRigidBody(cubeShape, pose.Mat4(), spatial.InertiaBox(half, mass), actor.BodyTypeDynamic)
	if err != nil {
		return nil, nil, nil, err
	}
	world.AddBody(cube)

	for _, et := range []physics.EventType{physics.CollisionEnter, physics.CollisionExit} {
		world.Events.Subscribe(et, func(e physics.Event) {
			fmt.Printf("  event: %v\n", e.Type)
		})
	}

	return world, ground, cube, nil
}

// heightAboveGround casts a ray straight down from the cube's centre.
func heightAboveGround(ground, cube *actor.RigidBody) (float64, bool) {
	ray := query.Ray{Origin: cube.CentreOfMassWS(), Direction: mgl64.Vec3{0, -1, 0}}
	hit, ok, err := query.RayCastWS(ray, ground.Shape(), ground.S2W())
	if err != nil || !ok {
		return math.Inf(1), false
	}
	return hit.T0, true
}

func run() error {
	world, ground, cube, err := SetupScene()
	if err != nil {
		return err
	}

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 200

	for step := range maxSteps {
		if err := world.Step(dt); err != nil {
			return err
		}

		c, touching, err := collision.CollideContact(ground.Shape(), ground.S2W(), cube.Shape(), cube.S2W())
		if err != nil {
			return err
		}

		v := cube.VelocityWS()
		fmt.Printf("step %3d  pos=%v  v=%v  w=%.3f  KE=%.3f\n",
			step+1, cube.CentreOfMassWS(), v.Lin, v.Ang.Len(), cube.KineticEnergy())
		if h, ok := heightAboveGround(ground, cube); ok {
			fmt.Printf("  height above ground: %.3f\n", h)
		}
		if touching {
			fmt.Printf("  contact: axis=%v depth=%.6f point=%v\n", c.Axis, c.Depth, c.Point)
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
