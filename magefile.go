//go:build mage

// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName    = "pvtracker"
	modulePath    = "github.com/penny-vault/pv-tracker"
	versionPkg    = modulePath + "/common"
	buildDateFlag = "-X " + versionPkg + ".buildDate=$BUILD_DATE"
)

var ldflags = "-X " + versionPkg + ".commitHash=$COMMIT_HASH " + buildDateFlag

// allow user to override go executable by running as GOEXE=xxx mage ...
var goexe = "go"

func init() {
	if exe := os.Getenv("GOEXE"); exe != "" {
		goexe = exe
	}
}

var Default = Build

// Build pvtracker with the commit hash and build date embedded
func Build() error {
	fmt.Println("Building...")
	return sh.RunWith(versionEnv(), goexe, "build", "-o", binaryName, "-ldflags", ldflags, ".")
}

// Install pvtracker into GOPATH/bin
func Install() error {
	return sh.RunWith(versionEnv(), goexe, "install", "-ldflags", ldflags, ".")
}

// Clean removes the built binary
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(binaryName)
}

// Check runs the formatters, vet, and the race enabled tests
func Check() {
	mg.Deps(Fmt, Vet)
	mg.Deps(TestRace)
}

// Test runs every test suite
func Test() error {
	fmt.Println("Go Test")
	return runCmd(goexe, "test", "./...")
}

// TestRace runs every test suite with the race detector
func TestRace() error {
	fmt.Println("Go Test Race")
	return runCmd(goexe, "test", "-race", "./...")
}

// Migrate applies the database schema using the built binary
func Migrate() error {
	mg.Deps(Build)
	return sh.RunV("./"+binaryName, "migrate", "up")
}

// Fmt fails when any package is not gofmt'ed
func Fmt() error {
	fmt.Println("Go Format")

	// gofmt doesn't exit with non-zero when it finds unformatted code
	// so look for output instead
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}

	unformatted := make([]string, 0)
	for _, fn := range strings.Split(out, "\n") {
		if fn != "" && !strings.HasPrefix(fn, "_") {
			unformatted = append(unformatted, fn)
		}
	}

	if len(unformatted) > 0 {
		fmt.Println("The following files are not gofmt'ed:")
		fmt.Println(strings.Join(unformatted, "\n"))
		return errors.New("improperly formatted go files")
	}
	return nil
}

// Vet runs go vet over every package
func Vet() error {
	fmt.Println("Go Vet")

	if err := sh.Run(goexe, "vet", "./..."); err != nil {
		return fmt.Errorf("error running go vet: %w", err)
	}
	return nil
}

func versionEnv() map[string]string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return map[string]string{
		"COMMIT_HASH": hash,
		"BUILD_DATE":  time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}

func runCmd(cmd string, args ...string) error {
	if mg.Verbose() {
		return sh.RunV(cmd, args...)
	}

	output, err := sh.Output(cmd, args...)
	if err != nil {
		fmt.Fprint(os.Stderr, output)
	}
	return err
}
