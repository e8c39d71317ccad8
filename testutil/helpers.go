package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateTempDir creates a temporary directory removed when the test ends
func CreateTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "neuralguard-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// WriteFile writes a fixture file under dir and returns its path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", name, err)
	}
	return path
}

// SampleContract is a small Solidity source that trips every advisory
const SampleContract = `pragma solidity ^0.8.0;

contract Vault {
    address public owner;

    function upgrade(address impl, bytes calldata data) external {
        require(msg.sender == owner);
        (bool ok, ) = impl.delegatecall(data);
        require(ok);
    }

    function destroy() external {
        require(msg.sender == owner);
        selfdestruct(payable(owner));
    }
}
`

// CleanContract contains none of the flagged substrings
const CleanContract = `pragma solidity ^0.8.0;

contract Counter {
    uint256 public count;

    function increment() external {
        count += 1;
    }
}
`
