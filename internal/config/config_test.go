/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config_test

import (
	"os"
	"path/filepath"

	spfpfl "github.com/spf13/pflag"
	spfvpr "github.com/spf13/viper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/submitty/router/internal/config"
	rterr "github.com/submitty/router/internal/errors"
)

const validInventory = `{
  "hosts": {
    "alpha": {
      "ip_address": "10.0.0.1",
      "tcp_start_port": 9000,
      "tcp_end_port": 9001,
      "udp_start_port": 9500,
      "udp_end_port": 9500
    },
    "bravo": {
      "ip_address": "10.0.0.2",
      "tcp_start_port": 9100,
      "tcp_end_port": 9100,
      "udp_start_port": 9600,
      "udp_end_port": 9600
    }
  }
}`

var _ = Describe("LoadInventory", func() {
	It("parses a valid inventory document into host directory entries", func() {
		path := filepath.Join(GinkgoT().TempDir(), "knownhosts.json")
		Expect(os.WriteFile(path, []byte(validInventory), 0o644)).To(Succeed())

		entries, err := config.LoadInventory(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))

		byName := make(map[string]int)
		for _, e := range entries {
			byName[e.Name] = e.TCPPortLow
		}
		Expect(byName["alpha"]).To(Equal(9000))
		Expect(byName["bravo"]).To(Equal(9100))
	})

	It("classifies a missing file as InventoryParse", func() {
		_, err := config.LoadInventory(filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(rterr.InventoryParse)).To(BeTrue())
	})

	It("classifies an invalid ip_address as InventoryParse", func() {
		path := filepath.Join(GinkgoT().TempDir(), "knownhosts.json")
		bad := `{"hosts": {"alpha": {"ip_address": "not-an-ip", "tcp_start_port": 1, "tcp_end_port": 1, "udp_start_port": 1, "udp_end_port": 1}}}`
		Expect(os.WriteFile(path, []byte(bad), 0o644)).To(Succeed())

		_, err := config.LoadInventory(path)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(rterr.InventoryParse)).To(BeTrue())
	})

	It("classifies malformed JSON as InventoryParse", func() {
		path := filepath.Join(GinkgoT().TempDir(), "knownhosts.json")
		Expect(os.WriteFile(path, []byte("{not json"), 0o644)).To(Succeed())

		_, err := config.LoadInventory(path)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(rterr.InventoryParse)).To(BeTrue())
	})
})

var _ = Describe("BindFlags and LoadSettings", func() {
	It("defaults to the documented flag values", func() {
		fs := spfpfl.NewFlagSet("test", spfpfl.ContinueOnError)
		v := spfvpr.New()
		config.BindFlags(fs, v)

		settings := config.LoadSettings(v)
		Expect(settings.InventoryPath).To(Equal("knownhosts.json"))
		Expect(settings.LogLevel).To(Equal("info"))
		Expect(settings.DiagramFile).To(Equal("sequence_diagram.txt"))
		Expect(settings.LogFile).To(Equal(""))
		Expect(settings.MetricsAddr).To(Equal(""))
	})

	It("reflects an explicitly parsed flag value", func() {
		fs := spfpfl.NewFlagSet("test", spfpfl.ContinueOnError)
		v := spfvpr.New()
		config.BindFlags(fs, v)

		Expect(fs.Parse([]string{"--log-level=debug", "--metrics-addr=:9090"})).To(Succeed())

		settings := config.LoadSettings(v)
		Expect(settings.LogLevel).To(Equal("debug"))
		Expect(settings.MetricsAddr).To(Equal(":9090"))
	})
})
