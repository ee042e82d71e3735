package backend

import (
	"fmt"
	"strings"
)

type registryRecord struct {
	ChainBase      string   `yaml:"chain_base"`
	Domain         string   `yaml:"domain"`
	Suffix         string   `yaml:"suffix"`
	Accounts       []string `yaml:"accounts"`
	CurrentAccount string   `yaml:"current_account"`
}

// ChainRegistry owns the ordered member list and the current-member
// pointer, persisted whole at the root of the workspace. Members are
// append-only; indices are contiguous from 1 and extension always advances
// the current pointer to the new tail.
type ChainRegistry struct {
	store RecordStore
	ws    Workspace
}

func NewChainRegistry(store RecordStore, ws Workspace) *ChainRegistry {
	return &ChainRegistry{store: store, ws: ws}
}

func (r *ChainRegistry) load() (registryRecord, bool, error) {
	var rec registryRecord
	found, err := r.store.Read(r.ws.RegistryPath(), &rec)
	if err != nil {
		return registryRecord{}, false, err
	}
	return rec, found && len(rec.Accounts) > 0, nil
}

func (r *ChainRegistry) save(rec registryRecord) error {
	return r.store.Write(r.ws.RegistryPath(), rec)
}

// Initialized reports whether the chain has at least one member.
func (r *ChainRegistry) Initialized() (bool, error) {
	_, ok, err := r.load()
	return ok, err
}

// Initialize records the first, already validated, chain member and makes
// sure its workspace and an empty ledger exist before returning.
func (r *ChainRegistry) Initialize(first ChainIdentity) error {
	_, ok, err := r.load()
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}
	rec := registryRecord{
		ChainBase:      first.Base,
		Domain:         MailDomain,
		Suffix:         RequiredSuffix,
		Accounts:       []string{first.LocalPart()},
		CurrentAccount: first.LocalPart(),
	}
	if err := r.save(rec); err != nil {
		return err
	}
	return r.ensureAccountState(first.LocalPart())
}

// Current resolves the member every operation works against.
func (r *ChainRegistry) Current() (ChainIdentity, error) {
	rec, ok, err := r.load()
	if err != nil {
		return ChainIdentity{}, err
	}
	if !ok {
		return ChainIdentity{}, ErrUninitialized
	}
	return ParseLocalPart(rec.CurrentAccount)
}

// Base returns the immutable chain base token.
func (r *ChainRegistry) Base() (string, error) {
	rec, ok, err := r.load()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUninitialized
	}
	return rec.ChainBase, nil
}

// Members returns the chain in creation order.
func (r *ChainRegistry) Members() ([]ChainIdentity, error) {
	rec, ok, err := r.load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUninitialized
	}
	members := make([]ChainIdentity, 0, len(rec.Accounts))
	for _, local := range rec.Accounts {
		id, err := ParseLocalPart(local)
		if err != nil {
			return nil, fmt.Errorf("%w: registry holds malformed account %q", ErrStorageIO, local)
		}
		members = append(members, id)
	}
	return members, nil
}

// SwitchCurrent repoints the current member to the 1-based position. Pure
// pointer move; nothing else changes.
func (r *ChainRegistry) SwitchCurrent(position int) (ChainIdentity, error) {
	rec, ok, err := r.load()
	if err != nil {
		return ChainIdentity{}, err
	}
	if !ok {
		return ChainIdentity{}, ErrUninitialized
	}
	if position < 1 || position > len(rec.Accounts) {
		return ChainIdentity{}, fmt.Errorf("%w: %d (chain has %d members)", ErrIndexOutOfRange, position, len(rec.Accounts))
	}
	rec.CurrentAccount = rec.Accounts[position-1]
	if err := r.save(rec); err != nil {
		return ChainIdentity{}, err
	}
	return ParseLocalPart(rec.CurrentAccount)
}

// RequiredNext is the only identity Extend will accept.
func (r *ChainRegistry) RequiredNext() (ChainIdentity, error) {
	rec, ok, err := r.load()
	if err != nil {
		return ChainIdentity{}, err
	}
	if !ok {
		return ChainIdentity{}, ErrUninitialized
	}
	return RequiredNextIdentity(rec.ChainBase, len(rec.Accounts)), nil
}

// Extend appends the confirmed identity and advances the current pointer.
// All-or-nothing: on mismatch no registry state or workspace is touched.
func (r *ChainRegistry) Extend(confirmed ChainIdentity) error {
	rec, ok, err := r.load()
	if err != nil {
		return err
	}
	if !ok {
		return ErrUninitialized
	}
	required := RequiredNextIdentity(rec.ChainBase, len(rec.Accounts))
	if !strings.EqualFold(confirmed.LocalPart(), required.LocalPart()) {
		return fmt.Errorf("%w: expected %s, got %s", ErrIdentityMismatch, required.Address(), confirmed.Address())
	}
	rec.Accounts = append(rec.Accounts, required.LocalPart())
	rec.CurrentAccount = required.LocalPart()
	if err := r.save(rec); err != nil {
		return err
	}
	return r.ensureAccountState(required.LocalPart())
}

func (r *ChainRegistry) ensureAccountState(local string) error {
	if _, err := r.ws.EnsureAccountDir(local); err != nil {
		return err
	}
	return NewLedger(r.store, r.ws).EnsureExists(local)
}
