package contract

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed abi/*.json
var builtinFS embed.FS

// BuiltinKind is a contract whose ABI is embedded in the binary.
type BuiltinKind struct {
	ID          string // artifact name, e.g. "SampleToken"
	Description string // one-line summary shown in `deployments builtins`
	Artifact    *Artifact
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in artifact to the global registry.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// Builtin returns a built-in by ID. ok is false if not found.
func Builtin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func mustEmbedded(name string) *Artifact {
	data, err := builtinFS.ReadFile("abi/" + name + ".json")
	if err != nil {
		panic(fmt.Sprintf("contract: missing embedded artifact %s: %v", name, err))
	}
	a, err := ParseArtifact(data)
	if err != nil {
		panic(fmt.Sprintf("contract: embedded artifact %s: %v", name, err))
	}
	return a
}

func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "SampleToken",
		Description: "Ownable ERC-20 with enumerable MINTER_ROLE, mint and burn",
		Artifact:    mustEmbedded("SampleToken"),
	})
	RegisterBuiltin(BuiltinKind{
		ID:          "SampleCoin",
		Description: "Ownable ERC-20 with EIP-712 permit approvals",
		Artifact:    mustEmbedded("SampleCoin"),
	})
	RegisterBuiltin(BuiltinKind{
		ID:          "Faucet",
		Description: "Mints a fixed drip per caller with a 24h cooldown",
		Artifact:    mustEmbedded("Faucet"),
	})
}
