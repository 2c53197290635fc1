package optim

// Method names a stochastic quasi-Newton variant. The name picks the
// curvature-pair strategy, the damping and regularization flags, and whether
// the method keeps a bounded pair window or a full Hessian approximation.
type Method string

const (
	// SQN updates curvature every L steps from Hessian-vector products over
	// averaged iterates.
	SQN Method = "SQN"
	// DSQN is SQN with Powell damping.
	DSQN Method = "DSQN"

	// OBFGS is online BFGS: per-step gradient differencing into a full
	// Hessian approximation.
	OBFGS Method = "oBFGS"
	// OLBFGS is the limited-memory variant of oBFGS.
	OLBFGS Method = "oLBFGS"
	// DOBFGS is oBFGS with Powell damping.
	DOBFGS Method = "D-oBFGS"
	// DOLBFGS is oLBFGS with Powell damping.
	DOLBFGS Method = "D-oLBFGS"

	// RES is regularized stochastic BFGS: gradient differencing with the
	// delta·I Hessian regularizer.
	RES Method = "RES"
	// LRES is the limited-memory variant of RES.
	LRES Method = "L-RES"

	// SDBFGS combines regularization and Powell damping.
	SDBFGS Method = "SDBFGS"
	// LSDBFGS is the limited-memory variant of SDBFGS.
	LSDBFGS Method = "L-SDBFGS"

	// AdaQN builds Fisher-weighted pairs from a sliding gradient window,
	// with monitored rollback on divergence.
	AdaQN Method = "adaQN"
)

// family selects which pair-update discipline drives a method.
type family int

const (
	famHessVec family = iota
	famGradDiff
	famFisher
)

// methodSpec is the dispatcher's pure configuration mapping; it carries no
// numerical logic.
type methodSpec struct {
	family      family
	damping     bool
	regularized bool
	fullMemory  bool
}

var methods = map[Method]methodSpec{
	SQN:     {family: famHessVec},
	DSQN:    {family: famHessVec, damping: true},
	OBFGS:   {family: famGradDiff, fullMemory: true},
	OLBFGS:  {family: famGradDiff},
	DOBFGS:  {family: famGradDiff, damping: true, fullMemory: true},
	DOLBFGS: {family: famGradDiff, damping: true},
	RES:     {family: famGradDiff, regularized: true, fullMemory: true},
	LRES:    {family: famGradDiff, regularized: true},
	SDBFGS:  {family: famGradDiff, damping: true, regularized: true, fullMemory: true},
	LSDBFGS: {family: famGradDiff, damping: true, regularized: true},
	AdaQN:   {family: famFisher},
}

// Methods lists every supported method name.
func Methods() []Method {
	return []Method{SQN, DSQN, OBFGS, OLBFGS, DOBFGS, DOLBFGS, RES, LRES, SDBFGS, LSDBFGS, AdaQN}
}

// usesPeriod reports whether the family runs its curvature update every L
// steps rather than every step.
func (f family) usesPeriod() bool { return f == famHessVec || f == famFisher }
