package backend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	IndexWidth     = 3
	RequiredSuffix = "cloudchain"
	MailDomain     = "gmail.com"
)

var localPartPattern = regexp.MustCompile(
	fmt.Sprintf(`^(.+?)(\d{%d})\.%s$`, IndexWidth, RequiredSuffix))

// ChainIdentity is one account's derived name within the chain. Base is the
// operator-chosen token shared by every member; Index is 1-based and
// contiguous in creation order.
type ChainIdentity struct {
	Base  string
	Index int
}

// LocalPart renders the mail local part, e.g. mybackup001.cloudchain.
func (c ChainIdentity) LocalPart() string {
	return fmt.Sprintf("%s%0*d.%s", c.Base, IndexWidth, c.Index, RequiredSuffix)
}

// Address renders the full mail address the operator has to create.
func (c ChainIdentity) Address() string {
	return c.LocalPart() + "@" + MailDomain
}

// DeriveIdentity formats the chain member at the given index. Pure; callers
// are expected to pass index >= 1.
func DeriveIdentity(base string, index int) ChainIdentity {
	return ChainIdentity{Base: base, Index: index}
}

// RequiredNextIdentity is the only identity the registry will accept as the
// next member of a chain that already has memberCount members.
func RequiredNextIdentity(base string, memberCount int) ChainIdentity {
	return DeriveIdentity(base, memberCount+1)
}

// ValidateFirstIdentity checks the address the operator claims to have
// created for the very first chain member. The base is extracted from the
// address rather than chosen directly, so the real-world account has to
// conform before it is trusted. Only index 001 is accepted.
func ValidateFirstIdentity(email string) (ChainIdentity, error) {
	local, domain, err := splitAddress(email)
	if err != nil {
		return ChainIdentity{}, err
	}
	if domain != MailDomain {
		return ChainIdentity{}, fmt.Errorf("%w: domain must be %s", ErrInvalidFirstIdentity, MailDomain)
	}
	id, err := ParseLocalPart(local)
	if err != nil {
		return ChainIdentity{}, err
	}
	if id.Index != 1 {
		return ChainIdentity{}, fmt.Errorf("%w: first account must end with %s", ErrInvalidFirstIdentity, DeriveIdentity("", 1).LocalPart())
	}
	return id, nil
}

// ParseLocalPart recovers base and index from a stored local part.
func ParseLocalPart(local string) (ChainIdentity, error) {
	m := localPartPattern.FindStringSubmatch(local)
	if m == nil {
		return ChainIdentity{}, fmt.Errorf("%w: %q must match <base><%d digits>.%s", ErrInvalidFirstIdentity, local, IndexWidth, RequiredSuffix)
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return ChainIdentity{}, fmt.Errorf("%w: %q", ErrInvalidFirstIdentity, local)
	}
	return ChainIdentity{Base: m[1], Index: idx}, nil
}

func splitAddress(email string) (local, domain string, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "", "", fmt.Errorf("%w: enter the full address, e.g. mybackup001.%s@%s", ErrInvalidFirstIdentity, RequiredSuffix, MailDomain)
	}
	return local, domain, nil
}
