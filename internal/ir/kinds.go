package ir

import "fmt"

// Dialect groups operation kinds by the sub-language they belong to.
// Host dialects describe the kernel as produced by the upstream
// pipeline; DialectSPIRV is the target form.
type Dialect uint8

const (
	// DialectArith covers scalar/vector arithmetic and casts.
	DialectArith Dialect = iota
	// DialectMath covers transcendental math functions.
	DialectMath
	// DialectMemRef covers memory reference access.
	DialectMemRef
	// DialectFunc covers calls and returns.
	DialectFunc
	// DialectCF covers unstructured control flow.
	DialectCF
	// DialectVector covers vector shuffling ops.
	DialectVector
	// DialectGPU covers device-side kernel ops and launch sites.
	DialectGPU
	// DialectSPIRV is the target dialect.
	DialectSPIRV
)

func (d Dialect) String() string {
	switch d {
	case DialectArith:
		return "arith"
	case DialectMath:
		return "math"
	case DialectMemRef:
		return "memref"
	case DialectFunc:
		return "func"
	case DialectCF:
		return "cf"
	case DialectVector:
		return "vector"
	case DialectGPU:
		return "gpu"
	case DialectSPIRV:
		return "spirv"
	default:
		return fmt.Sprintf("Dialect(%d)", d)
	}
}

// OpKind enumerates operation kinds across all dialects.
type OpKind uint8

const (
	OpInvalid OpKind = iota

	// arith
	OpConstant
	OpAddI
	OpSubI
	OpMulI
	OpAddF
	OpSubF
	OpMulF
	OpDivF
	OpMaxF
	OpCmpI
	OpSelect
	OpTruncF
	OpExtF
	OpBitcast
	OpIndexCast

	// math
	OpExp
	OpSqrt

	// memref
	OpLoad
	OpStore

	// func
	OpCall
	OpReturn

	// cf
	OpBranch
	OpCondBranch

	// vector
	OpBroadcast
	OpVecExtract
	OpVecInsert

	// gpu
	OpThreadID
	OpBlockID
	OpBlockDim
	OpBarrier
	OpGPUReturn
	OpPrintf
	OpLaunchKernel

	// spirv
	SpvConstant
	SpvSpecConstant
	SpvSpecConstantComposite
	SpvGlobalVariable
	SpvAddressOf
	SpvBitcast
	SpvIAdd
	SpvISub
	SpvIMul
	SpvFAdd
	SpvFSub
	SpvFMul
	SpvFDiv
	SpvIEqual
	SpvINotEqual
	SpvSLessThan
	SpvSLessThanEqual
	SpvSGreaterThan
	SpvSGreaterThanEqual
	SpvSelect
	SpvFConvert
	SpvSConvert
	SpvAccessChain
	SpvLoad
	SpvStore
	SpvFunctionCall
	SpvReturn
	SpvReturnValue
	SpvBranch
	SpvBranchConditional
	SpvCompositeExtract
	SpvCompositeInsert
	SpvCompositeConstruct
	SpvControlBarrier
	SpvCLExp
	SpvCLSqrt
	SpvCLFMax
	SpvCLPrintf
	SpvConvertFToBF16
	SpvConvertBF16ToF

	opKindCount
)

type opInfo struct {
	name       string
	dialect    Dialect
	terminator bool
}

var opInfos = [opKindCount]opInfo{
	OpInvalid: {name: "invalid", dialect: DialectArith},

	OpConstant:  {name: "arith.constant", dialect: DialectArith},
	OpAddI:      {name: "arith.addi", dialect: DialectArith},
	OpSubI:      {name: "arith.subi", dialect: DialectArith},
	OpMulI:      {name: "arith.muli", dialect: DialectArith},
	OpAddF:      {name: "arith.addf", dialect: DialectArith},
	OpSubF:      {name: "arith.subf", dialect: DialectArith},
	OpMulF:      {name: "arith.mulf", dialect: DialectArith},
	OpDivF:      {name: "arith.divf", dialect: DialectArith},
	OpMaxF:      {name: "arith.maximumf", dialect: DialectArith},
	OpCmpI:      {name: "arith.cmpi", dialect: DialectArith},
	OpSelect:    {name: "arith.select", dialect: DialectArith},
	OpTruncF:    {name: "arith.truncf", dialect: DialectArith},
	OpExtF:      {name: "arith.extf", dialect: DialectArith},
	OpBitcast:   {name: "arith.bitcast", dialect: DialectArith},
	OpIndexCast: {name: "arith.index_cast", dialect: DialectArith},

	OpExp:  {name: "math.exp", dialect: DialectMath},
	OpSqrt: {name: "math.sqrt", dialect: DialectMath},

	OpLoad:  {name: "memref.load", dialect: DialectMemRef},
	OpStore: {name: "memref.store", dialect: DialectMemRef},

	OpCall:   {name: "func.call", dialect: DialectFunc},
	OpReturn: {name: "func.return", dialect: DialectFunc, terminator: true},

	OpBranch:     {name: "cf.br", dialect: DialectCF, terminator: true},
	OpCondBranch: {name: "cf.cond_br", dialect: DialectCF, terminator: true},

	OpBroadcast:  {name: "vector.broadcast", dialect: DialectVector},
	OpVecExtract: {name: "vector.extract", dialect: DialectVector},
	OpVecInsert:  {name: "vector.insert", dialect: DialectVector},

	OpThreadID:     {name: "gpu.thread_id", dialect: DialectGPU},
	OpBlockID:      {name: "gpu.block_id", dialect: DialectGPU},
	OpBlockDim:     {name: "gpu.block_dim", dialect: DialectGPU},
	OpBarrier:      {name: "gpu.barrier", dialect: DialectGPU},
	OpGPUReturn:    {name: "gpu.return", dialect: DialectGPU, terminator: true},
	OpPrintf:       {name: "gpu.printf", dialect: DialectGPU},
	OpLaunchKernel: {name: "gpu.launch_func", dialect: DialectGPU},

	SpvConstant:              {name: "spirv.Constant", dialect: DialectSPIRV},
	SpvSpecConstant:          {name: "spirv.SpecConstant", dialect: DialectSPIRV},
	SpvSpecConstantComposite: {name: "spirv.SpecConstantComposite", dialect: DialectSPIRV},
	SpvGlobalVariable:        {name: "spirv.GlobalVariable", dialect: DialectSPIRV},
	SpvAddressOf:             {name: "spirv.mlir.addressof", dialect: DialectSPIRV},
	SpvBitcast:               {name: "spirv.Bitcast", dialect: DialectSPIRV},
	SpvIAdd:                  {name: "spirv.IAdd", dialect: DialectSPIRV},
	SpvISub:                  {name: "spirv.ISub", dialect: DialectSPIRV},
	SpvIMul:                  {name: "spirv.IMul", dialect: DialectSPIRV},
	SpvFAdd:                  {name: "spirv.FAdd", dialect: DialectSPIRV},
	SpvFSub:                  {name: "spirv.FSub", dialect: DialectSPIRV},
	SpvFMul:                  {name: "spirv.FMul", dialect: DialectSPIRV},
	SpvFDiv:                  {name: "spirv.FDiv", dialect: DialectSPIRV},
	SpvIEqual:                {name: "spirv.IEqual", dialect: DialectSPIRV},
	SpvINotEqual:             {name: "spirv.INotEqual", dialect: DialectSPIRV},
	SpvSLessThan:             {name: "spirv.SLessThan", dialect: DialectSPIRV},
	SpvSLessThanEqual:        {name: "spirv.SLessThanEqual", dialect: DialectSPIRV},
	SpvSGreaterThan:          {name: "spirv.SGreaterThan", dialect: DialectSPIRV},
	SpvSGreaterThanEqual:     {name: "spirv.SGreaterThanEqual", dialect: DialectSPIRV},
	SpvSelect:                {name: "spirv.Select", dialect: DialectSPIRV},
	SpvFConvert:              {name: "spirv.FConvert", dialect: DialectSPIRV},
	SpvSConvert:              {name: "spirv.SConvert", dialect: DialectSPIRV},
	SpvAccessChain:           {name: "spirv.AccessChain", dialect: DialectSPIRV},
	SpvLoad:                  {name: "spirv.Load", dialect: DialectSPIRV},
	SpvStore:                 {name: "spirv.Store", dialect: DialectSPIRV},
	SpvFunctionCall:          {name: "spirv.FunctionCall", dialect: DialectSPIRV},
	SpvReturn:                {name: "spirv.Return", dialect: DialectSPIRV, terminator: true},
	SpvReturnValue:           {name: "spirv.ReturnValue", dialect: DialectSPIRV, terminator: true},
	SpvBranch:                {name: "spirv.Branch", dialect: DialectSPIRV, terminator: true},
	SpvBranchConditional:     {name: "spirv.BranchConditional", dialect: DialectSPIRV, terminator: true},
	SpvCompositeExtract:      {name: "spirv.CompositeExtract", dialect: DialectSPIRV},
	SpvCompositeInsert:       {name: "spirv.CompositeInsert", dialect: DialectSPIRV},
	SpvCompositeConstruct:    {name: "spirv.CompositeConstruct", dialect: DialectSPIRV},
	SpvControlBarrier:        {name: "spirv.ControlBarrier", dialect: DialectSPIRV},
	SpvCLExp:                 {name: "spirv.CL.exp", dialect: DialectSPIRV},
	SpvCLSqrt:                {name: "spirv.CL.sqrt", dialect: DialectSPIRV},
	SpvCLFMax:                {name: "spirv.CL.fmax", dialect: DialectSPIRV},
	SpvCLPrintf:              {name: "spirv.CL.printf", dialect: DialectSPIRV},
	SpvConvertFToBF16:        {name: "spirv.INTEL.ConvertFToBF16", dialect: DialectSPIRV},
	SpvConvertBF16ToF:        {name: "spirv.INTEL.ConvertBF16ToF", dialect: DialectSPIRV},
}

// Valid reports whether k names a known operation kind.
func (k OpKind) Valid() bool {
	return k > OpInvalid && k < opKindCount
}

func (k OpKind) String() string {
	if k >= opKindCount {
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
	return opInfos[k].name
}

// Dialect returns the dialect the kind belongs to.
func (k OpKind) Dialect() Dialect {
	if k >= opKindCount {
		return DialectArith
	}
	return opInfos[k].dialect
}

// IsTerminator reports whether ops of this kind end a block.
func (k OpKind) IsTerminator() bool {
	if k >= opKindCount {
		return false
	}
	return opInfos[k].terminator
}
