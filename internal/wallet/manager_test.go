package wallet_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/samkit/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatKey0 = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	err := mgr.Add("mywallet", &wallet.Wallet{Address: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"})
	require.NoError(t, err)

	w, err := mgr.Get("mywallet")
	require.NoError(t, err)
	assert.Equal(t, "mywallet", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", w.Address, "stored checksummed")
	assert.NotEmpty(t, w.CreatedAt)
}

func TestAddRejectsBadAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.Add("bad", &wallet.Wallet{Address: "0x123"})
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	_, err := mgr.AddWithKey("dup", hardhatKey0)
	require.NoError(t, err)

	_, err = mgr.AddWithKey("dup", hardhatKey0)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
	err = mgr.Add("dup", &wallet.Wallet{Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"})
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, err := mgr.AddWithKey("signer", hardhatKey0)
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", w.Address)
	assert.True(t, w.IsDefault, "first signing wallet becomes the default")
	assert.Equal(t, "samkit.signer", w.KeyRef)
}

func TestAddWithInvalidKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("bad", "0xnothex")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)

	_, err = mgr.Get("bad")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	t.Setenv(wallet.EnvPrivateKey, "")
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))

	w, err := mgr.AddWithKey("temp", hardhatKey0)
	require.NoError(t, err)
	require.NoError(t, mgr.Remove("temp"))

	_, err = mgr.Get("temp")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = ks.Retrieve(w.KeyRef)
	assert.Error(t, err)

	assert.ErrorIs(t, mgr.Remove("temp"), wallet.ErrWalletNotFound)
}

func TestListSortedByName(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	for _, name := range []string{"charlie", "alice", "bob"} {
		require.NoError(t, mgr.Add(name, &wallet.Wallet{Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"}))
	}

	list, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].Name)
	assert.Equal(t, "bob", list[1].Name)
	assert.Equal(t, "charlie", list[2].Name)
}

func TestSetDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("a", hardhatKey0)
	require.NoError(t, err)
	_, err = mgr.AddWithKey("b", "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d")
	require.NoError(t, err)

	assert.Equal(t, "a", mgr.Default().Name)
	require.NoError(t, mgr.SetDefault("b"))
	assert.Equal(t, "b", mgr.Default().Name)
	assert.ErrorIs(t, mgr.SetDefault("zzz"), wallet.ErrWalletNotFound)
}

func TestDefaultEmpty(t *testing.T) {
	assert.Nil(t, wallet.NewManager(wallet.WithInMemoryStore()).Default())
}

// ---------------------------------------------------------------------------
// JSONStore
// ---------------------------------------------------------------------------

func TestJSONStorePersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallets.json")
	ks := wallet.NewInMemoryKeystore()

	first := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	_, err := first.AddWithKey("deployer", hardhatKey0)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	w, err := second.Get("deployer")
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", w.Address)
}

func TestJSONStoreLoadNoFile(t *testing.T) {
	store := wallet.NewJSONStore(filepath.Join(t.TempDir(), "nonexistent.json"))
	wallets, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	mgr := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)))
	_, err := mgr.Get("x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, wallet.ErrWalletNotFound)
}
