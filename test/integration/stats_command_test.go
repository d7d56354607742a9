package integration_test

import (
	"encoding/json"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gexec"
)

var _ = Describe("Stats Command", func() {
	Describe("Calculating statistics", func() {
		Context("when calculating stats from a manifest file", func() {
			It("should display statistics in text format", func() {
				command := exec.Command(pathToCLI, "stats", "--file", sampleManifestPath())
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(0))
				output := string(session.Out.Contents())
				Expect(output).To(ContainSubstring("Total Jobs"))
				Expect(output).To(ContainSubstring("Manifest Statistics"))
			})

			It("should display frequency statistics", func() {
				command := exec.Command(pathToCLI, "stats", "--file", sampleManifestPath())
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(0))
				output := string(session.Out.Contents())
				Expect(output).To(MatchRegexp("Total Runs per Day|Total Runs per Hour"))
			})
		})

		Context("when using --json flag", func() {
			It("should output statistics in JSON format", func() {
				command := exec.Command(pathToCLI, "stats", "--file", sampleManifestPath(), "--json")
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(0))
				output := string(session.Out.Contents())

				var stats map[string]interface{}
				err = json.Unmarshal([]byte(output), &stats)
				Expect(err).NotTo(HaveOccurred())
				Expect(stats).To(HaveKey("TotalRunsPerDay"))
				Expect(stats).To(HaveKey("TotalRunsPerHour"))
				Expect(stats).To(HaveKey("JobFrequencies"))
			})
		})

		Context("when using --verbose flag", func() {
			It("should display detailed statistics", func() {
				command := exec.Command(pathToCLI, "stats", "--file", sampleManifestPath(), "--verbose")
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(0))
				output := string(session.Out.Contents())
				Expect(output).To(ContainSubstring("Total Jobs"))
			})
		})

		Context("when using --top flag", func() {
			It("should limit most frequent jobs to specified number", func() {
				command := exec.Command(pathToCLI, "stats", "--file", sampleManifestPath(), "--top", "1", "--verbose")
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(0))
			})
		})

		Context("when handling an empty manifest", func() {
			It("should handle it gracefully", func() {
				emptyFile := filepath.Join("..", "..", "testdata", "manifests", "empty.yaml")
				command := exec.Command(pathToCLI, "stats", "--file", emptyFile)
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(0))
				output := string(session.Out.Contents())
				Expect(output).To(ContainSubstring("Total Jobs: 0"))
			})
		})

		Context("when the manifest file does not exist", func() {
			It("should report an error", func() {
				command := exec.Command(pathToCLI, "stats", "--file", "/nonexistent/manifest.yaml")
				session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
				Expect(err).NotTo(HaveOccurred())

				Eventually(session).Should(gexec.Exit(1))
			})
		})
	})
})
