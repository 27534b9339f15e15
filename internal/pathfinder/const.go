package pathfinder

// Defaults and tolerances.
const (
	DefaultMaxSrcDist          = 150.0
	DefaultMaxRefDist          = 50.0
	DefaultReflectionOrder     = 1
	DefaultThreadCount         = 0 // 0 => runtime.NumCPU()
	DefaultGroundCoefficient   = 0.0
	DefaultGroundElevation     = 0.0
	DefaultReflectionTolerance = 1e-3 // metres a reflection point may fall outside its wall segment
	DefaultSinkQueue           = 1024
	MaxSideHullIterations      = 50 // horizontal diffraction hull refinement rounds
	MirrorCancelCheckEvery     = 256
	MirrorBVHMaxLeafSize       = 4
	ProgressSteps              = 100 // ~1% progress lines
	// hot-loop constants
	epsGeom   = 1e-9 // coordinate equality in plan
	epsDist   = 1e-6 // distances along a profile
	epsHeight = 1e-6 // sight line vs obstacle comparisons
	epsCone   = 1e-7 // minimal clipped wall length for a visibility cone
	boundsTol = 1e-6 // rtree rectangles need strictly positive extents
)
