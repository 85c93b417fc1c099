package vkload

// Scope says how an entry point is resolved.
type Scope int

const (
	// ScopeModule entries are exported symbols of the driver library.
	ScopeModule Scope = iota
	// ScopeInstance entries are resolved with vkGetInstanceProcAddr.
	ScopeInstance
	// ScopeDevice entries are resolved with vkGetDeviceProcAddr.
	ScopeDevice
)

func (s Scope) String() string {
	switch s {
	case ScopeModule:
		return "module"
	case ScopeInstance:
		return "instance"
	case ScopeDevice:
		return "device"
	default:
		return "unknown"
	}
}

// EntryPoint names one Vulkan function and whether loading fails without it.
type EntryPoint struct {
	Name     string
	Scope    Scope
	Required bool
}

func module(name string, required bool) EntryPoint {
	return EntryPoint{Name: name, Scope: ScopeModule, Required: required}
}

func instance(name string, required bool) EntryPoint {
	return EntryPoint{Name: name, Scope: ScopeInstance, Required: required}
}

func device(name string, required bool) EntryPoint {
	return EntryPoint{Name: name, Scope: ScopeDevice, Required: required}
}

// DefaultEntryPoints is the function table used by the GS Vulkan renderer.
var DefaultEntryPoints = []EntryPoint{
	module("vkCreateInstance", true),
	module("vkGetInstanceProcAddr", true),
	module("vkEnumerateInstanceExtensionProperties", true),
	module("vkEnumerateInstanceLayerProperties", true),
	module("vkEnumerateInstanceVersion", false),

	instance("vkGetDeviceProcAddr", true),
	instance("vkDestroyInstance", true),
	instance("vkEnumeratePhysicalDevices", true),
	instance("vkGetPhysicalDeviceFeatures", true),
	instance("vkGetPhysicalDeviceFormatProperties", true),
	instance("vkGetPhysicalDeviceImageFormatProperties", true),
	instance("vkGetPhysicalDeviceProperties", true),
	instance("vkGetPhysicalDeviceQueueFamilyProperties", true),
	instance("vkGetPhysicalDeviceMemoryProperties", true),
	instance("vkCreateDevice", true),
	instance("vkEnumerateDeviceExtensionProperties", true),
	instance("vkEnumerateDeviceLayerProperties", true),
	instance("vkGetPhysicalDeviceSparseImageFormatProperties", true),
	instance("vkGetPhysicalDeviceFeatures2", false),
	instance("vkGetPhysicalDeviceProperties2", false),
	instance("vkGetPhysicalDeviceMemoryProperties2", false),
	instance("vkDestroySurfaceKHR", false),
	instance("vkGetPhysicalDeviceSurfaceSupportKHR", false),
	instance("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", false),
	instance("vkGetPhysicalDeviceSurfaceFormatsKHR", false),
	instance("vkGetPhysicalDeviceSurfacePresentModesKHR", false),
	instance("vkCreateAndroidSurfaceKHR", false),
	instance("vkCreateXlibSurfaceKHR", false),
	instance("vkCreateWaylandSurfaceKHR", false),
	instance("vkCreateWin32SurfaceKHR", false),
	instance("vkCreateMetalSurfaceEXT", false),
	instance("vkCreateDebugUtilsMessengerEXT", false),
	instance("vkDestroyDebugUtilsMessengerEXT", false),
	instance("vkSubmitDebugUtilsMessageEXT", false),

	device("vkDestroyDevice", true),
	device("vkGetDeviceQueue", true),
	device("vkQueueSubmit", true),
	device("vkQueueWaitIdle", true),
	device("vkDeviceWaitIdle", true),
	device("vkAllocateMemory", true),
	device("vkFreeMemory", true),
	device("vkMapMemory", true),
	device("vkUnmapMemory", true),
	device("vkFlushMappedMemoryRanges", true),
	device("vkInvalidateMappedMemoryRanges", true),
	device("vkBindBufferMemory", true),
	device("vkBindImageMemory", true),
	device("vkGetBufferMemoryRequirements", true),
	device("vkGetImageMemoryRequirements", true),
	device("vkCreateFence", true),
	device("vkDestroyFence", true),
	device("vkResetFences", true),
	device("vkGetFenceStatus", true),
	device("vkWaitForFences", true),
	device("vkCreateSemaphore", true),
	device("vkDestroySemaphore", true),
	device("vkCreateQueryPool", true),
	device("vkDestroyQueryPool", true),
	device("vkGetQueryPoolResults", true),
	device("vkCreateBuffer", true),
	device("vkDestroyBuffer", true),
	device("vkCreateBufferView", true),
	device("vkDestroyBufferView", true),
	device("vkCreateImage", true),
	device("vkDestroyImage", true),
	device("vkGetImageSubresourceLayout", true),
	device("vkCreateImageView", true),
	device("vkDestroyImageView", true),
	device("vkCreateShaderModule", true),
	device("vkDestroyShaderModule", true),
	device("vkCreatePipelineCache", true),
	device("vkDestroyPipelineCache", true),
	device("vkGetPipelineCacheData", true),
	device("vkCreateGraphicsPipelines", true),
	device("vkCreateComputePipelines", true),
	device("vkDestroyPipeline", true),
	device("vkCreatePipelineLayout", true),
	device("vkDestroyPipelineLayout", true),
	device("vkCreateSampler", true),
	device("vkDestroySampler", true),
	device("vkCreateDescriptorSetLayout", true),
	device("vkDestroyDescriptorSetLayout", true),
	device("vkCreateDescriptorPool", true),
	device("vkDestroyDescriptorPool", true),
	device("vkResetDescriptorPool", true),
	device("vkAllocateDescriptorSets", true),
	device("vkFreeDescriptorSets", true),
	device("vkUpdateDescriptorSets", true),
	device("vkCreateFramebuffer", true),
	device("vkDestroyFramebuffer", true),
	device("vkCreateRenderPass", true),
	device("vkDestroyRenderPass", true),
	device("vkCreateCommandPool", true),
	device("vkDestroyCommandPool", true),
	device("vkResetCommandPool", true),
	device("vkAllocateCommandBuffers", true),
	device("vkFreeCommandBuffers", true),
	device("vkBeginCommandBuffer", true),
	device("vkEndCommandBuffer", true),
	device("vkCmdBindPipeline", true),
	device("vkCmdSetViewport", true),
	device("vkCmdSetScissor", true),
	device("vkCmdSetBlendConstants", true),
	device("vkCmdSetStencilReference", true),
	device("vkCmdBindDescriptorSets", true),
	device("vkCmdBindIndexBuffer", true),
	device("vkCmdBindVertexBuffers", true),
	device("vkCmdDraw", true),
	device("vkCmdDrawIndexed", true),
	device("vkCmdDispatch", true),
	device("vkCmdCopyBuffer", true),
	device("vkCmdCopyImage", true),
	device("vkCmdBlitImage", true),
	device("vkCmdCopyBufferToImage", true),
	device("vkCmdCopyImageToBuffer", true),
	device("vkCmdUpdateBuffer", true),
	device("vkCmdFillBuffer", true),
	device("vkCmdClearColorImage", true),
	device("vkCmdClearDepthStencilImage", true),
	device("vkCmdClearAttachments", true),
	device("vkCmdPipelineBarrier", true),
	device("vkCmdBeginQuery", true),
	device("vkCmdEndQuery", true),
	device("vkCmdResetQueryPool", true),
	device("vkCmdWriteTimestamp", true),
	device("vkCmdPushConstants", true),
	device("vkCmdBeginRenderPass", true),
	device("vkCmdNextSubpass", true),
	device("vkCmdEndRenderPass", true),
	device("vkCreateSwapchainKHR", false),
	device("vkDestroySwapchainKHR", false),
	device("vkGetSwapchainImagesKHR", false),
	device("vkAcquireNextImageKHR", false),
	device("vkQueuePresentKHR", false),
	device("vkCmdPushDescriptorSetKHR", false),
	device("vkGetBufferMemoryRequirements2", false),
	device("vkGetImageMemoryRequirements2", false),
	device("vkBindBufferMemory2", false),
	device("vkBindImageMemory2", false),
	device("vkGetCalibratedTimestampsEXT", false),
	device("vkCmdBeginDebugUtilsLabelEXT", false),
	device("vkCmdEndDebugUtilsLabelEXT", false),
	device("vkCmdInsertDebugUtilsLabelEXT", false),
	device("vkSetDebugUtilsObjectNameEXT", false),
}

// Table holds resolved function pointers for a list of entry points.
// Unresolved entries hold zero.
type Table struct {
	entries []EntryPoint
	index   map[string]int
	procs   []uintptr
}

// NewTable builds an empty table for entries.
func NewTable(entries []EntryPoint) *Table {
	t := &Table{
		entries: entries,
		index:   make(map[string]int, len(entries)),
		procs:   make([]uintptr, len(entries)),
	}
	for i, e := range entries {
		t.index[e.Name] = i
	}
	return t
}

// Entries returns the entry point list backing the table.
func (t *Table) Entries() []EntryPoint {
	return t.entries
}

// Proc returns the resolved pointer for name, or zero.
func (t *Table) Proc(name string) uintptr {
	if i, ok := t.index[name]; ok {
		return t.procs[i]
	}
	return 0
}

// Reset clears every resolved pointer.
func (t *Table) Reset() {
	clear(t.procs)
}

// ResetScope clears the pointers of one scope.
func (t *Table) ResetScope(s Scope) {
	for i, e := range t.entries {
		if e.Scope == s {
			t.procs[i] = 0
		}
	}
}

// Resolved counts the non-zero pointers of a scope against its total.
func (t *Table) Resolved(s Scope) (resolved, total int) {
	for i, e := range t.entries {
		if e.Scope != s {
			continue
		}
		total++
		if t.procs[i] != 0 {
			resolved++
		}
	}
	return resolved, total
}

// Loaded reports whether every required entry of a scope is resolved.
func (t *Table) Loaded(s Scope) bool {
	for i, e := range t.entries {
		if e.Scope == s && e.Required && t.procs[i] == 0 {
			return false
		}
	}
	return true
}

// Empty reports whether no pointer is set.
func (t *Table) Empty() bool {
	for _, p := range t.procs {
		if p != 0 {
			return false
		}
	}
	return true
}

// resolve fills one scope using lookup and returns the names of required
// entries that came back zero.
func (t *Table) resolve(s Scope, lookup func(name string) uintptr) (missing []string) {
	for i, e := range t.entries {
		if e.Scope != s {
			continue
		}
		t.procs[i] = lookup(e.Name)
		if t.procs[i] == 0 && e.Required {
			missing = append(missing, e.Name)
		}
	}
	return missing
}
