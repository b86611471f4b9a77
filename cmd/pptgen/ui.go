package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
)

var (
	slideStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func promptTopic() (string, error) {
	var topic string
	if err := huh.NewInput().
		Title("Enter your presentation topic").
		Value(&topic).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return eris.New("topic is required")
			}
			return nil
		}).
		Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(topic), nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	return err
}

func printSlideAdded(_ int, title string, _ bool) {
	fmt.Println(slideStyle.Render("Slide added: " + title))
}
