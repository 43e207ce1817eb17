package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrNoBytecode is returned when deploying an artifact that only carries an ABI.
var ErrNoBytecode = errors.New("artifact has no bytecode")

// Artifact is a compiled contract: its ABI and, when known, its creation bytecode.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	RawABI       json.RawMessage
	Bytecode     []byte
}

// Deployable reports whether the artifact carries creation bytecode.
func (a *Artifact) Deployable() bool { return len(a.Bytecode) > 0 }

// ParseArtifact decodes a Hardhat or Foundry artifact, or a bare ABI array.
//
//   - Hardhat:  {"contractName":"X","abi":[...],"bytecode":"0x6080..."}
//   - Foundry:  {"abi":[...],"bytecode":{"object":"0x6080..."}}
//   - raw ABI:  [...]
func ParseArtifact(data []byte) (*Artifact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("artifact is empty")
	}

	if data[0] == '[' {
		parsed, err := abi.JSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing ABI: %w", err)
		}
		return &Artifact{ABI: parsed, RawABI: json.RawMessage(data)}, nil
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, errors.New(`artifact has no "abi" array`)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}

	a := &Artifact{ContractName: raw.ContractName, ABI: parsed, RawABI: raw.ABI}
	if len(raw.Bytecode) == 0 {
		return a, nil
	}
	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	if bcHex == "" || bcHex == "0x" {
		return a, nil
	}
	if !strings.HasPrefix(bcHex, "0x") {
		bcHex = "0x" + bcHex
	}
	a.Bytecode, err = hexutil.Decode(bcHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in artifact: %w", err)
	}
	return a, nil
}

// LoadArtifact reads and parses the artifact at path. A missing contractName
// is taken from the file name.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.ContractName == "" {
		a.ContractName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return a, nil
}

// FindArtifact walks a Hardhat artifacts/ tree (or a Foundry out/ tree) for
// <name>.json, skipping Hardhat's *.dbg.json companions.
func FindArtifact(dir, name string) (*Artifact, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name+".json" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", dir, err)
	}
	if found == "" {
		return nil, fmt.Errorf("%w: no artifact for %s under %s", ErrContractNotFound, name, dir)
	}
	return LoadArtifact(found)
}

// extractBytecodeHex handles the two common artifact formats:
//   - Hardhat:  "bytecode": "0x608060..."          (JSON string)
//   - Foundry:  "bytecode": {"object": "0x608060..."} (JSON object)
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", errors.New(`bytecode field is neither a hex string nor a {"object":"0x..."} object`)
}
