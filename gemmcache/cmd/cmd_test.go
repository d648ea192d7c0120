package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/gemm"
	"github.com/sarchlab/gemmcache/tracing"
)

var _ = Describe("gemmcache", func() {
	var (
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		tempDir string
	)

	BeforeEach(func() {
		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
		tempDir = GinkgoT().TempDir()
	})

	run := func(args ...string) error {
		root := NewRootCmd()
		root.SetOut(stdout)
		root.SetErr(stderr)
		root.SetArgs(append(args,
			"--env-file", filepath.Join(tempDir, "missing.env")))

		return root.ExecuteContext(context.Background())
	}

	Context("trace", func() {
		It("should print every event", func() {
			err := run("trace", "-n", "2", "--order", "ijk", "--limit", "0")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring(
				"       0  (0,0)      (0,0)      (0,0)"))
			Expect(stdout.String()).To(ContainSubstring(
				"       7  (1,1)      (1,1)      (1,1)"))
			Expect(stdout.String()).To(ContainSubstring("Total operations:  8"))
		})

		It("should print a window of the trace", func() {
			err := run("trace", "-n", "4", "--from", "5", "--limit", "2")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("       5  "))
			Expect(stdout.String()).To(ContainSubstring("       6  "))
			Expect(stdout.String()).NotTo(ContainSubstring("       7  "))
		})

		It("should print the rest of the trace for a huge limit", func() {
			err := run("trace", "-n", "2", "--from", "6",
				"--limit", "9223372036854775807")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("       6  "))
			Expect(stdout.String()).To(ContainSubstring("       7  "))
		})

		It("should report the block size", func() {
			err := run("trace", "-n", "4", "-b", "-t", "2", "--limit", "1")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Block size:        2"))
		})

		It("should reject unknown loop orders", func() {
			err := run("trace", "--order", "xyz")

			Expect(err).To(MatchError(gemm.ErrInvalidArgument))
		})

		It("should reject bad tiles", func() {
			err := run("trace", "-n", "4", "-b", "-t", "5")

			Expect(err).To(MatchError(gemm.ErrInvalidArgument))
		})
	})

	It("should print heatmaps", func() {
		err := run("heatmap", "-n", "2", "--order", "kij")

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(ContainSubstring("A (max 2, total 8)\n2 2\n2 2\n"))
		Expect(stdout.String()).To(ContainSubstring("C (max 2, total 8)"))
	})

	Context("simulate", func() {
		It("should print the statistics", func() {
			err := run("simulate", "-n", "2", "--order", "ijk",
				"--cache-size", "256", "--line-size", "64",
				"--associativity", "1")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Accesses:    32"))
			Expect(stdout.String()).To(ContainSubstring("4 sets"))
		})

		It("should size the cache to the matrices", func() {
			err := run("simulate", "-n", "32", "--scaled")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring(
				"Cache:       8192 bytes, 64-byte lines, 4-way, 32 sets"))
		})

		It("should take defaults from the environment", func() {
			GinkgoT().Setenv(EnvCacheSize, "1024")
			GinkgoT().Setenv(EnvAssociativity, "2")

			err := run("simulate", "-n", "2")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring(
				"Cache:       1024 bytes, 64-byte lines, 2-way, 8 sets"))
		})

		It("should prefer flags over the environment", func() {
			GinkgoT().Setenv(EnvCacheSize, "1024")

			err := run("simulate", "-n", "2", "--cache-size", "2048")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Cache:       2048 bytes"))
		})

		It("should load an env file", func() {
			envFile := filepath.Join(tempDir, "test.env")
			err := os.WriteFile(envFile,
				[]byte(EnvLineSize+"=32\n"), 0o644)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.Unsetenv, EnvLineSize)

			root := NewRootCmd()
			root.SetOut(stdout)
			root.SetArgs([]string{"simulate", "-n", "2", "--env-file", envFile})
			err = root.Execute()

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("32-byte lines"))
		})

		It("should reject a bad cache", func() {
			err := run("simulate", "--associativity", "3")

			Expect(err).To(MatchError(cache.ErrInvalidConfiguration))
		})

		It("should reject a non-numeric environment", func() {
			GinkgoT().Setenv(EnvLineSize, "big")

			err := run("simulate")

			Expect(err).To(HaveOccurred())
		})

		It("should log accesses", func() {
			err := run("simulate", "-n", "2", "--log-accesses")

			Expect(err).NotTo(HaveOccurred())
			lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
			Expect(lines).To(HaveLen(32))
			Expect(lines[0]).To(HavePrefix("1, A, read, 0x10000,"))
			Expect(lines[3]).To(HaveSuffix("hit"))
		})

		It("should need --record to record accesses", func() {
			err := run("simulate", "--record-accesses")

			Expect(err).To(HaveOccurred())
		})

		It("should record the run", func() {
			path := filepath.Join(tempDir, "run")

			err := run("simulate", "-n", "2", "--record", path,
				"--record-accesses")
			Expect(err).NotTo(HaveOccurred())

			db, err := sql.Open("sqlite3", path+".sqlite3")
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()

			count := func(table string) int {
				var n int
				err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
				Expect(err).NotTo(HaveOccurred())

				return n
			}

			Expect(count(tracing.RunTable)).To(Equal(1))
			Expect(count(tracing.AccessTable)).To(Equal(32))
			Expect(count("exec_info")).To(BeNumerically(">=", 5))
		})
	})

	Context("compare", func() {
		It("should rank the modes", func() {
			err := run("compare", "-n", "4", "-t", "2", "--orders", "ijk,kji")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("   1  "))
			Expect(stdout.String()).To(ContainSubstring("   4  "))
			Expect(stdout.String()).To(ContainSubstring("kji-blocked"))
			Expect(stdout.String()).NotTo(ContainSubstring("ikj"))
		})

		It("should reject unknown orders", func() {
			err := run("compare", "--orders", "ijk,abc")

			Expect(err).To(MatchError(gemm.ErrInvalidArgument))
		})

		It("should record and list the runs", func() {
			path := filepath.Join(tempDir, "compare")

			err := run("compare", "-n", "4", "-t", "2", "--record", path)
			Expect(err).NotTo(HaveOccurred())

			stdout.Reset()
			err = run("runs", path)

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("12 of 12 runs"))
		})
	})

	It("should fail to list runs of a missing database", func() {
		err := run("runs", filepath.Join(tempDir, "nothing"))

		Expect(err).To(MatchError(os.ErrNotExist))
	})
})
