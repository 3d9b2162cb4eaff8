package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/plexbot/pkg/config"
)

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeConfig := func(data string) {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
	}

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file and fills in defaults", func() {
			writeConfig(`version = 0

[perplexity]
model = "sonar-pro"
stream = true

[chat]
models = ["sonar-pro", "sonar-reasoning"]
model_select = true
`)

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Perplexity.Model).To(Equal("sonar-pro"))
			Expect(cfg.Perplexity.Stream).To(BeTrue())
			Expect(cfg.Chat.Models).To(Equal([]string{"sonar-pro", "sonar-reasoning"}))
			Expect(cfg.Chat.ModelSelect).To(BeTrue())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Perplexity.Endpoint).To(Equal(defaults.Perplexity.Endpoint))
			Expect(cfg.Perplexity.ResponseFormat).To(Equal("text"))
			Expect(cfg.Web.Listen).To(Equal(":5173"))
			Expect(cfg.Tap.KafkaTopic).To(Equal(defaults.Tap.KafkaTopic))
		})

		It("returns error for malformed TOML", func() {
			writeConfig("this is not [valid toml")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
		})

		It("returns error for unsupported config version", func() {
			writeConfig("version = 99\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 99")))
		})
	})

	Describe("SaveConfig", func() {
		It("persists config to disk", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Web.Listen = ":9000"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Web.Listen).To(Equal(":9000"))
		})

		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})

	Describe("SetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets a string key", func() {
			Expect(c.SetConfigValue("perplexity.model", "sonar-pro")).To(Succeed())

			v, err := c.GetConfigValue("perplexity.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("sonar-pro"))
		})

		It("sets a bool key", func() {
			Expect(c.SetConfigValue("chat.model_select", "true")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Chat.ModelSelect).To(BeTrue())
		})

		It("rejects an invalid bool", func() {
			Expect(c.SetConfigValue("perplexity.stream", "maybe")).To(MatchError(ContainSubstring("invalid value for perplexity.stream")))
		})

		It("sets list keys from comma separated values", func() {
			Expect(c.SetConfigValue("chat.models", "sonar, sonar-pro,sonar-reasoning")).To(Succeed())
			Expect(c.SetConfigValue("tap.kafka_brokers", "k1:9092,k2:9092")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Chat.Models).To(Equal([]string{"sonar", "sonar-pro", "sonar-reasoning"}))
			Expect(cfg.Tap.KafkaBrokers).To(Equal([]string{"k1:9092", "k2:9092"}))

			v, err := c.GetConfigValue("chat.models")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("sonar,sonar-pro,sonar-reasoning"))
		})

		It("validates timeouts", func() {
			Expect(c.SetConfigValue("perplexity.timeout", "30s")).To(Succeed())
			Expect(c.SetConfigValue("perplexity.timeout", "soon")).To(MatchError(ContainSubstring("invalid perplexity.timeout")))

			v, err := c.GetConfigValue("perplexity.timeout")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("30s"))
		})

		It("sets a uint key", func() {
			Expect(c.SetConfigValue("tap.workers", "4")).To(Succeed())
			Expect(c.SetConfigValue("tap.workers", "-1")).To(MatchError(ContainSubstring("invalid value for tap.workers")))

			v, err := c.GetConfigValue("tap.workers")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("4"))
		})

		It("returns error for unknown key", func() {
			Expect(c.SetConfigValue("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("preserves existing values when setting a new key", func() {
			Expect(c.SetConfigValue("perplexity.api_key", "pplx-secret")).To(Succeed())
			Expect(c.SetConfigValue("web.listen", ":8080")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Perplexity.APIKey).To(Equal("pplx-secret"))
			Expect(cfg.Web.Listen).To(Equal(":8080"))
		})
	})

	Describe("GetConfigValue", func() {
		It("returns defaults when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			v, err := c.GetConfigValue("perplexity.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("sonar"))

			v, err = c.GetConfigValue("perplexity.api_key")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeEmpty())
		})

		It("returns error for unknown key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.GetConfigValue("nope")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("config keys", func() {
	It("lists keys in section order", func() {
		keys := config.ValidConfigKeys()

		Expect(keys[0]).To(Equal("perplexity.api_key"))
		Expect(keys).To(ContainElements("chat.models", "web.listen", "tap.sqlite_path"))
		Expect(keys).To(HaveLen(14))
		Expect(config.ValidConfigKeys()).To(Equal(keys))

		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
		}
	})

	It("validates keys", func() {
		Expect(config.IsValidConfigKey("perplexity.model")).To(BeTrue())
		Expect(config.IsValidConfigKey("api.listen")).To(BeFalse())
	})

	It("marks only the api key as secret", func() {
		Expect(config.IsSecretKey("perplexity.api_key")).To(BeTrue())
		Expect(config.IsSecretKey("perplexity.model")).To(BeFalse())
		Expect(config.IsSecretKey("unknown")).To(BeFalse())
	})
})

var _ = Describe("PerplexityConfig", func() {
	It("parses the timeout", func() {
		d, err := config.PerplexityConfig{Timeout: "1m30s"}.TimeoutDuration()
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Seconds()).To(BeNumerically("==", 90))
	})

	It("treats an empty timeout as none", func() {
		d, err := config.PerplexityConfig{}.TimeoutDuration()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeZero())
	})

	It("rejects negative timeouts", func() {
		_, err := config.PerplexityConfig{Timeout: "-1s"}.TimeoutDuration()
		Expect(err).To(HaveOccurred())
	})

	It("disables the response format with none", func() {
		Expect(config.PerplexityConfig{ResponseFormat: "none"}.Format()).To(BeEmpty())
		Expect(config.PerplexityConfig{ResponseFormat: "text"}.Format()).To(Equal("text"))
	})
})

var _ = Describe("TapConfig", func() {
	It("is disabled by default", func() {
		Expect(config.NewDefaultConfig().Tap.Enabled()).To(BeFalse())
	})

	It("is enabled by a sqlite path or brokers", func() {
		Expect(config.TapConfig{SQLitePath: "x.db"}.Enabled()).To(BeTrue())
		Expect(config.TapConfig{KafkaBrokers: []string{"k:9092"}}.Enabled()).To(BeTrue())
	})
})

var _ = Describe("SplitList", func() {
	It("splits on commas and whitespace", func() {
		Expect(config.SplitList("a, b", "c d", "")).To(Equal([]string{"a", "b", "c", "d"}))
	})

	It("returns nil when nothing remains", func() {
		Expect(config.SplitList()).To(BeNil())
		Expect(config.SplitList(" , ")).To(BeNil())
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("returns empty config for empty input", func() {
		cfg, err := config.ParseConfigTOML([]byte(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Perplexity.Model).To(BeEmpty())
	})
})
