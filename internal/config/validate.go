package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateCanvas(); err != nil {
		return err
	}
	if err := c.validateAssets(); err != nil {
		return err
	}
	if err := c.validateProbe(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.MaxChars < 0 {
		return errors.New("alignment.max_chars must not be negative")
	}
	return nil
}

func (c *Config) validateCanvas() error {
	return ensurePositiveMap(map[string]int{
		"canvas.width":  c.Canvas.Width,
		"canvas.height": c.Canvas.Height,
	})
}

func (c *Config) validateAssets() error {
	if !c.Assets.Placement().Valid() {
		return errors.New("assets.image_x, assets.image_y, assets.image_width and assets.image_height must be between 0 and 1")
	}
	if c.Assets.ImageWidth == 0 || c.Assets.ImageHeight == 0 {
		return errors.New("assets.image_width and assets.image_height must be positive")
	}
	return nil
}

func (c *Config) validateProbe() error {
	if err := ensurePositiveMap(map[string]int{
		"probe.default_width":  c.Probe.DefaultWidth,
		"probe.default_height": c.Probe.DefaultHeight,
	}); err != nil {
		return err
	}
	if c.Probe.DefaultFPS <= 0 {
		return errors.New("probe.default_fps must be positive")
	}
	if c.Probe.DefaultDuration <= 0 {
		return errors.New("probe.default_duration_seconds must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
