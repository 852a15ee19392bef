// Package emailfilter rejects disposable email domains before an account
// is created.
package emailfilter

import (
	"bufio"
	"os"
	"strings"
)

// Built-in denylist; extended at startup from an optional file with one
// domain per line (see Load).
var builtin = []string{
	"10minutemail.com",
	"discard.email",
	"fakeinbox.com",
	"getnada.com",
	"guerrillamail.com",
	"mailinator.com",
	"maildrop.cc",
	"sharklasers.com",
	"temp-mail.org",
	"tempmail.com",
	"throwawaymail.com",
	"trashmail.com",
	"yopmail.com",
}

type Filter struct {
	domains map[string]struct{}
}

// Load builds a filter from the built-in list plus the optional file at
// path. A missing path is not an error; an unreadable file is.
func Load(path string) (*Filter, error) {
	f := &Filter{domains: make(map[string]struct{}, len(builtin))}
	for _, d := range builtin {
		f.domains[d] = struct{}{}
	}

	if path == "" {
		return f, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		d := strings.ToLower(strings.TrimSpace(sc.Text()))
		if d == "" || strings.HasPrefix(d, "#") {
			continue
		}
		f.domains[d] = struct{}{}
	}
	return f, sc.Err()
}

// Disposable reports whether the email's domain (or any parent domain)
// is on the denylist. Malformed addresses are not the filter's concern
// and pass through.
func (f *Filter) Disposable(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for domain != "" {
		if _, ok := f.domains[domain]; ok {
			return true
		}
		dot := strings.IndexByte(domain, '.')
		if dot < 0 {
			break
		}
		domain = domain[dot+1:]
	}
	return false
}
