package constants

const (
	DefaultBootDir    = "/boot"
	DefaultExtlinux   = "/boot/extlinux/extlinux.conf"
	DefaultDeviceTree = "/proc/device-tree"
	DefaultPinctrlDir = "/sys/kernel/debug/pinctrl"
	DefaultMountRoot  = "/mnt"
	DefaultConfigFile = "/etc/jetson-io/jetson-io.env"
	LogDir            = "/var/log/jetson-io"

	// Device-tree property names.
	PropHeaderName  = "jetson-header-name"
	PropOverlayName = "overlay-name"
	PropCompatible  = "compatible"
	PropModel       = "model"
	PropPins        = "nvidia,pins"
	PropFunction    = "nvidia,function"
	PropTristate    = "nvidia,tristate"
	PropEnableInput = "nvidia,enable-input"
	PropPinLabel    = "nvidia,pin-label"
	PropPinGroup    = "nvidia,pin-group"

	// Symbols written by earlier sessions of the tool.
	SymbolJetsonIOPinmux    = "__symbols__/jetson_io_pinmux"
	SymbolJetsonIOPinmuxAON = "__symbols__/jetson_io_pinmux_aon"
	SymbolPinmux            = "__symbols__/pinmux"
	SymbolPinmuxAON         = "__symbols__/pinmux_aon"

	// Redundant rootfs partition labels, by active slot.
	PartLabelSlotA = "APP"
	PartLabelSlotB = "APP_b"

	BootEntryLabel   = "JetsonIO"
	SignatureSuffix  = ".sig"
	SignatureBackup  = ".jetson-io-backup"
	UserCustomSuffix = "user-custom.dtbo"

	OpSelectHeader = "select-header"
	OpLoadAddon    = "load-addon"
	OpSetPins      = "set-pins"
	OpCreateDtbo   = "create-dtbo"
	OpPublish      = "publish"
)
