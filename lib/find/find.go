// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package find locates USB serial adapters by walking /sys/class/tty, so the
// GPIB adapter's device node doesn't have to be spelled out on every run.
package find

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Usbtty describes one USB-attached tty.
type Usbtty struct {
	Dev, Path string
	IDp, IDv  string
	Mfg, Prod string
	Serial    string
}

func (u Usbtty) String() string {
	return fmt.Sprintf("dev %s pid/vid %s/%s mfg/prod %s/%s serial %s",
		u.Dev, u.IDp, u.IDv, u.Mfg, u.Prod, u.Serial)
}

// FilterFn narrows tty candidates.
type FilterFn func(*Usbtty) bool

// PrologixFilter matches Prologix GPIB-USB controllers by product string.
func PrologixFilter(ut *Usbtty) bool {
	return strings.Contains(ut.Prod, "Prologix")
}

// SerialFilter matches the adapter with the given USB serial number.
func SerialFilter(s string) FilterFn {
	return func(ut *Usbtty) bool { return ut.Serial == s }
}

// Find returns the device name (without /dev/) of the first USB tty matched
// by filter, or of the only USB tty present when nothing matches. Zero or
// multiple candidates is an error.
func Find(filter FilterFn) (string, error) {
	ttys, err := AllUsbTtys()
	if err != nil {
		return "", err
	}
	if filter != nil {
		for i := range ttys {
			if filter(&ttys[i]) {
				return ttys[i].Dev, nil
			}
		}
	}
	if len(ttys) == 0 {
		return "", fmt.Errorf("no usb ttys found")
	}
	if len(ttys) > 1 {
		return "", fmt.Errorf("multiple usb ttys: %v", ttys)
	}
	return ttys[0].Dev, nil
}

// AllUsbTtys lists the USB-attached ttys under /sys/class/tty.
func AllUsbTtys() ([]Usbtty, error) {
	const sct = "/sys/class/tty/"
	entries, err := os.ReadDir(sct)
	if err != nil {
		return nil, err
	}
	var devs []Usbtty
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		abs, err := filepath.EvalSymlinks(filepath.Join(sct, e.Name()))
		if err != nil {
			log.Printf("skipping %s: %s", e.Name(), err)
			continue
		}
		if !strings.Contains(abs, "usb") {
			continue
		}
		dev, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			log.Printf("usb tty %s without device dir: %s", abs, err)
			continue
		}
		ut := Usbtty{Dev: e.Name(), Path: abs}
		// The descriptor strings live one level above the interface dir.
		if err := ut.readUsbInfo(filepath.Dir(dev)); err != nil {
			log.Printf("%s: %s", abs, err)
		}
		devs = append(devs, ut)
	}
	return devs, nil
}

// readUsbInfo fills the descriptor fields from the sysfs device dir. Missing
// files are skipped; the last other error is returned after reading the rest.
func (u *Usbtty) readUsbInfo(dir string) error {
	var err error
	read := func(name string, dst *string) {
		b, rerr := os.ReadFile(filepath.Join(dir, name))
		if rerr != nil {
			if !errors.Is(rerr, os.ErrNotExist) {
				err = rerr
			}
			return
		}
		*dst = strings.TrimSpace(string(b))
	}
	read("idProduct", &u.IDp)
	read("idVendor", &u.IDv)
	read("manufacturer", &u.Mfg)
	read("product", &u.Prod)
	read("serial", &u.Serial)
	return err
}
