package mir

import "github.com/rogerflowey/rust-compiler-sub004/internal/types"

// isAggregate reports whether values of t live in memory rather than in a
// scalar register/temp (spec.md §3.5: "Aggregates cannot be operands").
func isAggregate(ctx *types.Context, t types.TypeId) bool {
	if t == types.Invalid {
		return false
	}
	switch ctx.Type(t).Kind {
	case types.KindStruct, types.KindArray:
		return true
	default:
		return false
	}
}

// planReturn derives a function's ReturnDesc from its HIR return type
// (spec.md §4.9 "ABI plan": primitives/small scalars ride Direct,
// aggregates ride IndirectSRet).
func planReturn(ctx *types.Context, retType types.TypeId) ReturnDesc {
	switch {
	case retType == ctx.Never():
		return ReturnDesc{Kind: ReturnNever}
	case retType == ctx.Unit():
		return ReturnDesc{Kind: ReturnVoid}
	case isAggregate(ctx, retType):
		return ReturnDesc{Kind: ReturnIndirectSRet, Type: retType}
	default:
		return ReturnDesc{Kind: ReturnDirect, Type: retType}
	}
}

// planParamMode decides how one parameter crosses the call boundary: a
// reference type is always a pointer-sized scalar (Ref); an aggregate
// passed by value needs the caller to hand the callee its own copy
// (ByValCallerCopy, since the callee's locals must own independent
// storage); anything else is a plain scalar (ByVal).
func planParamMode(ctx *types.Context, t types.TypeId) types.ParamMode {
	if t == types.Invalid {
		return types.ByVal
	}
	if ctx.Type(t).Kind == types.KindReference {
		return types.Ref
	}
	if isAggregate(ctx, t) {
		return types.ByValCallerCopy
	}
	return types.ByVal
}

// buildSignature assembles a MIR Signature from a function's resolved
// parameter types (including `self`, if any) and return type.
func buildSignature(ctx *types.Context, selfType types.TypeId, paramTypes []types.TypeId, retType types.TypeId) Signature {
	sig := Signature{Return: planReturn(ctx, retType)}

	if sig.Return.Kind == ReturnIndirectSRet {
		sig.AbiParams = append(sig.AbiParams, AbiParam{Type: retType, Mode: types.Ref})
	}

	allParams := paramTypes
	if selfType != types.Invalid {
		allParams = append([]types.TypeId{selfType}, paramTypes...)
	}
	sig.Params = allParams
	for _, pt := range allParams {
		sig.AbiParams = append(sig.AbiParams, AbiParam{Type: pt, Mode: planParamMode(ctx, pt)})
	}
	return sig
}
