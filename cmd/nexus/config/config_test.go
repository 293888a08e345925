package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/Yash3561/Nexus/cmd/nexus/config"
)

func execute(args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd := configcmder.NewConfigCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(GinkgoWriter)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "nexus-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// a local .nexus dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".nexus"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value", func() {
			_, err := execute("set", "llm.provider", "openai")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".nexus", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`provider = "openai"`))
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "llm.provider")
			Expect(err).To(HaveOccurred())

			_, err = execute("set")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := execute("set", "memory.window", "not-a-number")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid durations", func() {
			_, err := execute("set", "memory.registry_ttl", "soon")
			Expect(err).To(HaveOccurred())
		})

		It("masks secrets in its output", func() {
			out, err := execute("set", "llm.api_key", "sk-secret-1234")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(ContainSubstring("sk-secret"))
			Expect(out).To(ContainSubstring("1234"))
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := execute("set", "memory.window", "40")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "memory.window")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("40"))
		})

		It("reports an unset key", func() {
			out, err := execute("get", "search.api_key")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists defaults when no config exists", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("llm.provider"))
			Expect(out).To(ContainSubstring(`"gemini"`))
		})

		It("masks secrets", func() {
			_, err := execute("set", "tts.api_key", "el-abcdefgh")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("efgh"))
			Expect(out).NotTo(ContainSubstring("el-abcd"))
		})

		It("rejects any arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
