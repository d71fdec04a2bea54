// Package config loads, normalizes, and validates bookminify configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BOOKMINIFY_CACHE_DIR. The Config type centralizes every knob the pipeline
// and CLI need: conversion thresholds and qualities, the archive and image
// engines, the useful-work gate, and where working directories and logs live.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical engine names, and clear validation errors.
package config
