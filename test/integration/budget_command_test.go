package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gexec"
)

var _ = Describe("Budget Command", func() {
	var testFile string

	BeforeEach(func() {
		tmpDir := GinkgoT().TempDir()
		testFile = filepath.Join(tmpDir, "manifest.yaml")
	})

	Context("when analyzing a manifest", func() {
		It("should pass when budget is met", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job2\n    cron: \"15 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "10", "--window", "1h")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(0))
			Expect(session.Out.Contents()).To(ContainSubstring("Budget Analysis"))
		})

		It("should report without failing when budget is violated but not enforced", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job2\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job3\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "2", "--window", "1h")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(0))
			Expect(session.Out.Contents()).To(ContainSubstring("Budget Analysis"))
		})

		It("should enforce budget with --enforce flag", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job2\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job3\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "2", "--window", "1h", "--enforce")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(1))
		})

		It("should output JSON format", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "10", "--window", "1h", "--json")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(0))
			Expect(session.Out.Contents()).To(ContainSubstring(`"passed"`))
			Expect(session.Out.Contents()).To(ContainSubstring(`"budgets"`))
		})

		It("should show verbose output", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job2\n    cron: \"0 * * * *\"\n    handler: noop.run\n  - name: job3\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "2", "--window", "1h", "--verbose")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(0))
			output := string(session.Out.Contents())
			Expect(output).To(ContainSubstring("Budget Analysis"))
		})

		It("should evaluate schedules in UTC with --utc", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "10", "--window", "1h", "--utc")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(0))
			Expect(session.Out.Contents()).To(ContainSubstring("Budget Analysis"))
		})

		It("should error when max-concurrent is missing", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--window", "1h")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(1))
			Expect(session.Err.Contents()).To(ContainSubstring("max-concurrent"))
		})

		It("should error when window is missing", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "10")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(1))
			Expect(session.Err.Contents()).To(ContainSubstring("window"))
		})

		It("should error when window is invalid", func() {
			content := "jobs:\n  - name: job1\n    cron: \"0 * * * *\"\n    handler: noop.run\n"
			Expect(os.WriteFile(testFile, []byte(content), 0644)).To(Succeed())

			command := exec.Command(pathToCLI, "budget", "--file", testFile, "--max-concurrent", "10", "--window", "invalid")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(1))
			Expect(session.Err.Contents()).To(ContainSubstring("invalid"))
		})

		It("should error when the manifest file does not exist", func() {
			command := exec.Command(pathToCLI, "budget", "--file", "/nonexistent/manifest.yaml", "--max-concurrent", "10", "--window", "1h")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(1))
		})
	})
})
